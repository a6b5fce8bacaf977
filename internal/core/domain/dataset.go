package domain

import "fmt"

// Dataset is the read-only search space: a column-major table used for
// similarity matching and match counting. All columns have equal length.
type Dataset struct {
	attrs []string
	cols  map[string][]Value
	rows  int
}

// NewDataset builds a dataset from ordered attribute names and their
// columns. Every attribute needs a column and all columns must share one
// length; cell slices are copied.
func NewDataset(attrs []string, cols map[string][]Value) (Dataset, error) {
	known := make(map[string]struct{}, len(attrs))
	schema := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if attr == "" {
			return Dataset{}, WrapError(ErrInvalidInput, "build dataset", fmt.Errorf("empty attribute name"))
		}
		if _, dup := known[attr]; dup {
			return Dataset{}, WrapError(ErrInvalidInput, "build dataset", fmt.Errorf("duplicate attribute %q", attr))
		}
		known[attr] = struct{}{}
		schema = append(schema, attr)
	}
	rows := -1
	copied := make(map[string][]Value, len(schema))
	for _, attr := range schema {
		col, ok := cols[attr]
		if !ok {
			return Dataset{}, WrapError(ErrSchemaMismatch, "build dataset", fmt.Errorf("attribute %q has no column", attr))
		}
		if rows == -1 {
			rows = len(col)
		} else if len(col) != rows {
			return Dataset{}, WrapError(ErrInvalidInput, "build dataset", fmt.Errorf("column %q has %d cells, want %d", attr, len(col), rows))
		}
		cells := make([]Value, len(col))
		copy(cells, col)
		copied[attr] = cells
	}
	for attr := range cols {
		if _, ok := known[attr]; !ok {
			return Dataset{}, WrapError(ErrSchemaMismatch, "build dataset", fmt.Errorf("column %q is not a schema attribute", attr))
		}
	}
	if rows == -1 {
		rows = 0
	}
	return Dataset{attrs: schema, cols: copied, rows: rows}, nil
}

// Len returns the row count.
func (d Dataset) Len() int { return d.rows }

// Attributes returns the column names in order.
func (d Dataset) Attributes() []string {
	out := make([]string, len(d.attrs))
	copy(out, d.attrs)
	return out
}

func (d Dataset) HasAttribute(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the cells of one attribute in row order. The returned
// slice is shared and must be treated as read-only.
func (d Dataset) Column(name string) ([]Value, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, WrapError(ErrSchemaMismatch, "read column", fmt.Errorf("dataset has no attribute %q", name))
	}
	return col, nil
}
