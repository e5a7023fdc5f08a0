package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder accumulates the declarative pieces of one SELECT statement: a
// table name, at most one time grain, and ordered lists of slices,
// measures, ratios, and filters. Compile renders the accumulated state
// into query text.
//
// A Builder is not safe for concurrent use; confine each instance to a
// single goroutine or guard every mutator and Compile call together.
type Builder struct {
	table     string
	timeGrain *TimeGrain
	slices    []Slice
	measures  []Measure
	ratios    []Ratio
	filters   []Filter
}

// New creates a Builder for the given table with no components.
func New(table string) (*Builder, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: table name must not be empty", ErrInvalidArgument)
	}
	return &Builder{table: table}, nil
}

// SetTableName replaces the table used in the FROM clause.
func (b *Builder) SetTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name must not be empty", ErrInvalidArgument)
	}
	b.table = name
	return nil
}

// TableName returns the current FROM-clause table.
func (b *Builder) TableName() string {
	return b.table
}

// SetTimeGrain sets the time grain. A second call silently replaces the
// first; the builder never carries more than one.
func (b *Builder) SetTimeGrain(tg TimeGrain) {
	b.timeGrain = &tg
}

// AddSlice appends a grouping dimension. Order of addition is the order
// in SELECT, GROUP BY, and ORDER BY. Duplicates are not collapsed.
func (b *Builder) AddSlice(s Slice) {
	b.slices = append(b.slices, s)
}

// AddMeasure appends an aggregate column.
func (b *Builder) AddMeasure(m Measure) {
	b.measures = append(b.measures, m)
}

// AddRatio appends a derived numerator/denominator column.
func (b *Builder) AddRatio(r Ratio) {
	b.ratios = append(b.ratios, r)
}

// AddFilter appends a WHERE predicate after validating its shape.
func (b *Builder) AddFilter(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	b.filters = append(b.filters, f)
	return nil
}

// RemoveComponent removes the first component whose label equals label,
// searching the time grain, then slices, measures, and ratios. It
// reports whether a removal occurred. Filters carry no label and are
// never removed by this call.
func (b *Builder) RemoveComponent(label string) bool {
	if b.timeGrain != nil && b.timeGrain.Label == label {
		b.timeGrain = nil
		return true
	}
	for i, s := range b.slices {
		if sliceLabel(s) == label {
			b.slices = append(b.slices[:i], b.slices[i+1:]...)
			return true
		}
	}
	for i, m := range b.measures {
		if m.Label == label {
			b.measures = append(b.measures[:i], b.measures[i+1:]...)
			return true
		}
	}
	for i, r := range b.ratios {
		if r.Label == label {
			b.ratios = append(b.ratios[:i], b.ratios[i+1:]...)
			return true
		}
	}
	return false
}

func sliceLabel(s Slice) string {
	if s.Label == "" {
		return s.Column
	}
	return s.Label
}

// Compile renders the accumulated state as one SELECT statement. It is
// read-only: calling it twice without intervening mutation yields
// identical strings. It fails when no time grain, slice, measure, or
// ratio has been added, since the SELECT list would be empty.
func (b *Builder) Compile() (string, error) {
	selectParts := b.selectParts()
	if len(selectParts) == 0 {
		return "", fmt.Errorf("%w: no columns selected", ErrInvalidState)
	}

	clauses := []string{
		"SELECT\n  " + strings.Join(selectParts, ",\n  "),
		"FROM " + b.table,
		b.whereClause(),
	}

	groupPositions := b.groupCount()
	if groupPositions > 0 {
		clauses = append(clauses,
			"GROUP BY "+strings.Join(b.positions(groupPositions, false), ", "),
			"ORDER BY "+strings.Join(b.positions(groupPositions, true), ", "))
	}

	return strings.Join(clauses, "\n"), nil
}

// selectParts renders the SELECT list: time grain first, then slices,
// measures, and ratios in insertion order.
func (b *Builder) selectParts() []string {
	parts := make([]string, 0, 1+len(b.slices)+len(b.measures)+len(b.ratios))
	if b.timeGrain != nil {
		parts = append(parts, b.timeGrain.SQL())
	}
	for _, s := range b.slices {
		parts = append(parts, s.SQL())
	}
	for _, m := range b.measures {
		parts = append(parts, m.SQL())
	}
	for _, r := range b.ratios {
		parts = append(parts, r.SQL())
	}
	return parts
}

// whereClause always starts from the literal TRUE so that every filter
// joins uniformly with AND.
func (b *Builder) whereClause() string {
	parts := make([]string, 0, 1+len(b.filters))
	parts = append(parts, "TRUE")
	for _, f := range b.filters {
		parts = append(parts, f.SQL())
	}
	return "WHERE " + strings.Join(parts, " AND\n  ")
}

// groupCount is the number of positional entries in GROUP BY/ORDER BY:
// the time grain, if present, plus one per slice. Measures and ratios
// never participate.
func (b *Builder) groupCount() int {
	n := len(b.slices)
	if b.timeGrain != nil {
		n++
	}
	return n
}

// positions renders 1-based positional references. With ordered set, the
// time-grain position carries the DESC suffix; slices keep the default
// ascending order.
func (b *Builder) positions(n int, ordered bool) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strconv.Itoa(i + 1)
	}
	if ordered && b.timeGrain != nil {
		out[0] += " DESC"
	}
	return out
}
