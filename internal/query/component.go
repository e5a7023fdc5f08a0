package query

import (
	"fmt"
	"strings"
)

// FilterType selects how a Filter renders its WHERE predicate.
type FilterType string

const (
	// FilterList renders a quoted IN-list over the filter's values.
	FilterList FilterType = "list"
	// FilterCustom renders the stored expression verbatim.
	FilterCustom FilterType = "custom"
)

// TimeGrain is a date-truncation grouping dimension. It always occupies
// the first SELECT position and sorts descending in ORDER BY.
type TimeGrain struct {
	Column string
	Grain  string // "month", "day", "year", ...
	Label  string
}

// SQL renders the SELECT-list entry for the time grain.
func (tg TimeGrain) SQL() string {
	return fmt.Sprintf("date_trunc('%s', %s) AS \"%s\"", tg.Grain, tg.Column, tg.Label)
}

// Slice is a categorical grouping dimension included in GROUP BY.
type Slice struct {
	Column string
	Label  string
}

// SQL renders the SELECT-list entry for the slice. An empty label falls
// back to the column name.
func (s Slice) SQL() string {
	label := s.Label
	if label == "" {
		label = s.Column
	}
	return fmt.Sprintf("%s AS \"%s\"", s.Column, label)
}

// Measure is an aggregate expression excluded from grouping.
type Measure struct {
	Expression string
	Label      string
}

// SQL renders the SELECT-list entry for the measure.
func (m Measure) SQL() string {
	return fmt.Sprintf("%s AS \"%s\"", m.Expression, m.Label)
}

// Ratio is a derived measure computed as numerator over denominator.
// The denominator is wrapped in NULLIF so division by zero yields NULL.
type Ratio struct {
	Numerator   string
	Denominator string
	Label       string
}

// SQL renders the SELECT-list entry for the ratio.
func (r Ratio) SQL() string {
	return fmt.Sprintf("(%s) / NULLIF(%s, 0) AS \"%s\"", r.Numerator, r.Denominator, r.Label)
}

// Filter is a WHERE-clause predicate, either list-membership over quoted
// values or a raw custom expression. Values and expressions are
// interpolated into the output text without any escaping; callers own
// the trust boundary of what they pass in.
type Filter struct {
	Column     string
	Values     []string
	Expression string
	Type       FilterType
}

// Validate checks that the filter carries the fields its declared type
// requires.
func (f Filter) Validate() error {
	switch f.Type {
	case FilterList:
		if f.Column == "" {
			return fmt.Errorf("%w: list filter requires a column", ErrInvalidArgument)
		}
		if len(f.Values) == 0 {
			return fmt.Errorf("%w: list filter on %s requires at least one value", ErrInvalidArgument, f.Column)
		}
	case FilterCustom:
		if f.Expression == "" {
			return fmt.Errorf("%w: custom filter requires an expression", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unsupported filter type %q", ErrInvalidArgument, f.Type)
	}
	return nil
}

// SQL renders the WHERE predicate. List filters keep the trailing
// newline of the original format so the clause seam between consecutive
// predicates stays byte-compatible.
func (f Filter) SQL() string {
	if f.Type == FilterCustom {
		return f.Expression
	}
	quoted := make([]string, len(f.Values))
	for i, v := range f.Values {
		quoted[i] = "'" + v + "'"
	}
	return fmt.Sprintf("%s IN (%s)\n", f.Column, strings.Join(quoted, ", "))
}
