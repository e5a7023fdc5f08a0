package query

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(\"\") error = %v, want ErrInvalidArgument", err)
	}

	b, err := New("sales_data")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.TableName() != "sales_data" {
		t.Errorf("TableName() = %q, want %q", b.TableName(), "sales_data")
	}
}

func TestSetTableName(t *testing.T) {
	b, _ := New("sales_data")

	if err := b.SetTableName(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTableName(\"\") error = %v, want ErrInvalidArgument", err)
	}
	if b.TableName() != "sales_data" {
		t.Errorf("table changed on rejected rename: %q", b.TableName())
	}

	if err := b.SetTableName("updated_sales_data"); err != nil {
		t.Fatalf("SetTableName() error = %v", err)
	}
	b.AddMeasure(Measure{Expression: "COUNT(*)", Label: "Rows"})

	sql, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(sql, "FROM updated_sales_data") {
		t.Errorf("Compile() missing renamed FROM clause:\n%s", sql)
	}
}

func TestAddFilterValidates(t *testing.T) {
	b, _ := New("t")
	if err := b.AddFilter(Filter{Column: "region", Type: FilterList}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddFilter() error = %v, want ErrInvalidArgument", err)
	}
	if err := b.AddFilter(Filter{Column: "region", Values: []string{"East"}, Type: FilterList}); err != nil {
		t.Errorf("AddFilter() error = %v", err)
	}
}

func TestSetTimeGrainReplaces(t *testing.T) {
	b, _ := New("t")
	b.SetTimeGrain(TimeGrain{Column: "created", Grain: "day", Label: "Day"})
	b.SetTimeGrain(TimeGrain{Column: "created", Grain: "month", Label: "Month"})

	sql, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.Contains(sql, "'day'") {
		t.Errorf("first time grain survived replacement:\n%s", sql)
	}
	if !strings.Contains(sql, `date_trunc('month', created) AS "Month"`) {
		t.Errorf("replacement time grain missing:\n%s", sql)
	}
}

func TestRemoveComponent(t *testing.T) {
	build := func() *Builder {
		b, _ := New("t")
		b.SetTimeGrain(TimeGrain{Column: "created", Grain: "month", Label: "Month"})
		b.AddSlice(Slice{Column: "region", Label: "Region"})
		b.AddMeasure(Measure{Expression: "COUNT(*)", Label: "Rows"})
		b.AddRatio(Ratio{Numerator: "SUM(a)", Denominator: "SUM(b)", Label: "A per B"})
		return b
	}

	tests := []struct {
		name    string
		label   string
		removed bool
		gone    string
	}{
		{name: "time grain", label: "Month", removed: true, gone: "date_trunc"},
		{name: "slice", label: "Region", removed: true, gone: `region AS "Region"`},
		{name: "measure", label: "Rows", removed: true, gone: `COUNT(*) AS "Rows"`},
		{name: "ratio", label: "A per B", removed: true, gone: "NULLIF"},
		{name: "unknown label", label: "Nope", removed: false},
		{name: "case sensitive match", label: "month", removed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := build()
			before, _ := b.Compile()

			if got := b.RemoveComponent(tt.label); got != tt.removed {
				t.Fatalf("RemoveComponent(%q) = %v, want %v", tt.label, got, tt.removed)
			}

			after, err := b.Compile()
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if !tt.removed {
				if after != before {
					t.Errorf("state changed by failed removal:\n%s", after)
				}
				return
			}
			if strings.Contains(after, tt.gone) {
				t.Errorf("removed component still rendered:\n%s", after)
			}
		})
	}
}

func TestRemoveComponentFirstMatchOnly(t *testing.T) {
	b, _ := New("t")
	b.AddSlice(Slice{Column: "region", Label: "Dup"})
	b.AddMeasure(Measure{Expression: "COUNT(*)", Label: "Dup"})

	if !b.RemoveComponent("Dup") {
		t.Fatal("RemoveComponent() = false, want true")
	}
	sql, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	// The slice is scanned before the measure, so the measure survives.
	if strings.Contains(sql, "region") {
		t.Errorf("slice should have been removed first:\n%s", sql)
	}
	if !strings.Contains(sql, `COUNT(*) AS "Dup"`) {
		t.Errorf("measure should survive single removal:\n%s", sql)
	}
}

func TestRemoveComponentDoesNotTouchFilters(t *testing.T) {
	b, _ := New("t")
	b.AddMeasure(Measure{Expression: "COUNT(*)", Label: "Rows"})
	if err := b.AddFilter(Filter{Column: "region", Values: []string{"East"}, Type: FilterList}); err != nil {
		t.Fatal(err)
	}

	if b.RemoveComponent("region") {
		t.Error("RemoveComponent() matched a filter")
	}
	sql, _ := b.Compile()
	if !strings.Contains(sql, "region IN ('East')") {
		t.Errorf("filter lost:\n%s", sql)
	}
}

func TestCompileInsertionOrder(t *testing.T) {
	b, _ := New("t")
	b.AddSlice(Slice{Column: "a", Label: "A"})
	b.AddSlice(Slice{Column: "b", Label: "B"})
	b.AddMeasure(Measure{Expression: "SUM(x)", Label: "X"})

	sql, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.Index(sql, `a AS "A"`) > strings.Index(sql, `b AS "B"`) {
		t.Errorf("slice order not preserved:\n%s", sql)
	}
	if !strings.Contains(sql, "GROUP BY 1, 2") {
		t.Errorf("GROUP BY positions wrong:\n%s", sql)
	}
	// No time grain, so no DESC anywhere in ORDER BY.
	if !strings.Contains(sql, "ORDER BY 1, 2") {
		t.Errorf("ORDER BY positions wrong:\n%s", sql)
	}
}

func TestCompileNoGroupingClauses(t *testing.T) {
	b, _ := New("t")
	b.AddMeasure(Measure{Expression: "COUNT(*)", Label: "Rows"})

	sql, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.Contains(sql, "GROUP BY") || strings.Contains(sql, "ORDER BY") {
		t.Errorf("grouping clauses present without grouping columns:\n%s", sql)
	}
	if !strings.Contains(sql, "WHERE TRUE") {
		t.Errorf("WHERE TRUE missing:\n%s", sql)
	}
}

func TestCompileEmptyBuilder(t *testing.T) {
	b, _ := New("t")
	if _, err := b.Compile(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Compile() error = %v, want ErrInvalidState", err)
	}

	// A filter alone still selects nothing.
	if err := b.AddFilter(Filter{Expression: "x > 1", Type: FilterCustom}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Compile(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Compile() with only filters error = %v, want ErrInvalidState", err)
	}
}

func TestCompileIdempotent(t *testing.T) {
	b := salesReportBuilder(t)
	first, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	second, err := b.Compile()
	if err != nil {
		t.Fatalf("second Compile() error = %v", err)
	}
	if first != second {
		t.Errorf("Compile() not idempotent:\n%s\n---\n%s", first, second)
	}
}

// salesReportBuilder reproduces the documented sales report example,
// including the table rename and the removal of a slice after adding it.
func salesReportBuilder(t *testing.T) *Builder {
	t.Helper()

	b, err := New("sales_data")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SetTableName("updated_sales_data"); err != nil {
		t.Fatal(err)
	}
	b.SetTimeGrain(TimeGrain{Column: "sale_date", Grain: "month", Label: "Sale Month"})
	b.AddSlice(Slice{Column: "region", Label: "Sales Region"})
	b.AddSlice(Slice{Column: "product_category", Label: "Product Category"})
	if !b.RemoveComponent("Product Category") {
		t.Fatal("RemoveComponent(Product Category) = false")
	}
	b.AddMeasure(Measure{Expression: "SUM(revenue)", Label: "Total Revenue"})
	b.AddMeasure(Measure{Expression: "COUNT(distinct customer_id)", Label: "Unique Customers"})
	b.AddRatio(Ratio{
		Numerator:   "SUM(revenue)",
		Denominator: "COUNT(distinct customer_id)",
		Label:       "Revenue per Customer",
	})
	if err := b.AddFilter(Filter{Column: "region", Values: []string{"East", "West"}, Type: FilterList}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFilter(Filter{
		Expression: "sale_date >= '2023-01-01' AND sale_date <= '2023-12-31'",
		Type:       FilterCustom,
	}); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCompileSalesReport(t *testing.T) {
	expected := `SELECT
  date_trunc('month', sale_date) AS "Sale Month",
  region AS "Sales Region",
  SUM(revenue) AS "Total Revenue",
  COUNT(distinct customer_id) AS "Unique Customers",
  (SUM(revenue)) / NULLIF(COUNT(distinct customer_id), 0) AS "Revenue per Customer"
FROM updated_sales_data
WHERE TRUE AND
  region IN ('East', 'West')
 AND
  sale_date >= '2023-01-01' AND sale_date <= '2023-12-31'
GROUP BY 1, 2
ORDER BY 1 DESC, 2`

	sql, err := salesReportBuilder(t).Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if sql != expected {
		t.Errorf("Compile() =\n%s\nwant\n%s", sql, expected)
	}
}
