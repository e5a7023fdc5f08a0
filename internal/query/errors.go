package query

import "errors"

// ErrInvalidArgument reports input that fails shape validation before it
// ever reaches the compiled query: an empty table name, or a filter that
// lacks the fields its declared type requires.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidState reports a builder that cannot produce valid SQL in its
// current state, such as compiling with no selectable columns.
var ErrInvalidState = errors.New("invalid state")
