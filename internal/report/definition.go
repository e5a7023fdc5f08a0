// Package report loads declarative report definitions from YAML and
// materializes them into query builders. A definition is the on-disk
// form of one report: the table it reads, an optional time grain, and
// the slices, measures, ratios, and filters that shape the query.
package report

import (
	"fmt"
	"os"

	"github.com/sliceql/internal/query"
	"gopkg.in/yaml.v3"
)

// validGrains is the set of date_trunc grains accepted in definitions.
var validGrains = map[string]bool{
	"year":    true,
	"quarter": true,
	"month":   true,
	"week":    true,
	"day":     true,
	"hour":    true,
}

// TimeGrainDef describes the optional date-truncation dimension.
type TimeGrainDef struct {
	Column string `yaml:"column"`
	Grain  string `yaml:"grain"`
	Label  string `yaml:"label"`
}

// SliceDef describes one categorical grouping dimension.
type SliceDef struct {
	Column string `yaml:"column"`
	Label  string `yaml:"label,omitempty"`
}

// MeasureDef describes one aggregate column.
type MeasureDef struct {
	Expression string `yaml:"expression"`
	Label      string `yaml:"label"`
}

// RatioDef describes one derived numerator/denominator column.
type RatioDef struct {
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`
	Label       string `yaml:"label"`
}

// FilterDef describes one WHERE predicate. Exactly one of Values or
// Expression must be set; the filter type is inferred from which.
type FilterDef struct {
	Column     string   `yaml:"column,omitempty"`
	Values     []string `yaml:"values,omitempty"`
	Expression string   `yaml:"expression,omitempty"`
}

// Definition is one complete report description.
type Definition struct {
	Table     string        `yaml:"table"`
	TimeGrain *TimeGrainDef `yaml:"time_grain,omitempty"`
	Slices    []SliceDef    `yaml:"slices,omitempty"`
	Measures  []MeasureDef  `yaml:"measures,omitempty"`
	Ratios    []RatioDef    `yaml:"ratios,omitempty"`
	Filters   []FilterDef   `yaml:"filters,omitempty"`
}

// Load reads and parses a definition from a YAML file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	return Parse(data)
}

// Parse parses a definition from YAML bytes and validates it.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse report definition: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("invalid report definition: %w", err)
	}
	return &def, nil
}

// validate checks field presence the same way the builder will, so that
// a definition that loads cleanly also materializes cleanly.
func (d *Definition) validate() error {
	if d.Table == "" {
		return fmt.Errorf("table is required")
	}
	if tg := d.TimeGrain; tg != nil {
		if tg.Column == "" {
			return fmt.Errorf("time_grain.column is required")
		}
		if !validGrains[tg.Grain] {
			return fmt.Errorf("time_grain.grain %q is not one of year, quarter, month, week, day, hour", tg.Grain)
		}
		if tg.Label == "" {
			return fmt.Errorf("time_grain.label is required")
		}
	}
	for i, s := range d.Slices {
		if s.Column == "" {
			return fmt.Errorf("slices[%d].column is required", i)
		}
	}
	for i, m := range d.Measures {
		if m.Expression == "" {
			return fmt.Errorf("measures[%d].expression is required", i)
		}
		if m.Label == "" {
			return fmt.Errorf("measures[%d].label is required", i)
		}
	}
	for i, r := range d.Ratios {
		if r.Numerator == "" || r.Denominator == "" {
			return fmt.Errorf("ratios[%d] requires numerator and denominator", i)
		}
		if r.Label == "" {
			return fmt.Errorf("ratios[%d].label is required", i)
		}
	}
	for i, f := range d.Filters {
		hasValues := len(f.Values) > 0
		hasExpr := f.Expression != ""
		switch {
		case hasValues && hasExpr:
			return fmt.Errorf("filters[%d] sets both values and expression", i)
		case hasValues && f.Column == "":
			return fmt.Errorf("filters[%d].column is required for a values filter", i)
		case !hasValues && !hasExpr:
			return fmt.Errorf("filters[%d] sets neither values nor expression", i)
		}
	}
	return nil
}

// Builder materializes the definition into a query builder with every
// component added in definition order.
func (d *Definition) Builder() (*query.Builder, error) {
	b, err := query.New(d.Table)
	if err != nil {
		return nil, err
	}
	if tg := d.TimeGrain; tg != nil {
		b.SetTimeGrain(query.TimeGrain{Column: tg.Column, Grain: tg.Grain, Label: tg.Label})
	}
	for _, s := range d.Slices {
		b.AddSlice(query.Slice{Column: s.Column, Label: s.Label})
	}
	for _, m := range d.Measures {
		b.AddMeasure(query.Measure{Expression: m.Expression, Label: m.Label})
	}
	for _, r := range d.Ratios {
		b.AddRatio(query.Ratio{Numerator: r.Numerator, Denominator: r.Denominator, Label: r.Label})
	}
	for _, f := range d.Filters {
		qf := query.Filter{Column: f.Column, Values: f.Values, Expression: f.Expression, Type: query.FilterCustom}
		if len(f.Values) > 0 {
			qf.Type = query.FilterList
		}
		if err := b.AddFilter(qf); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Compile materializes and compiles the definition in one step.
func (d *Definition) Compile() (string, error) {
	b, err := d.Builder()
	if err != nil {
		return "", err
	}
	return b.Compile()
}
