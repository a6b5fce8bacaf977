package domain

import "fmt"

// Catalog is an ordered collection of RFDs over one attribute schema.
// Filtering and ranking derive new catalogs; the original never changes.
type Catalog struct {
	attrs []string
	rfds  []RFD
}

// NewCatalog builds a catalog from a schema and its dependency rows.
func NewCatalog(attrs []string, rfds []RFD) (Catalog, error) {
	known := make(map[string]struct{}, len(attrs))
	schema := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if attr == "" {
			return Catalog{}, WrapError(ErrInvalidInput, "build catalog", fmt.Errorf("empty attribute name"))
		}
		if _, dup := known[attr]; dup {
			return Catalog{}, WrapError(ErrInvalidInput, "build catalog", fmt.Errorf("duplicate attribute %q", attr))
		}
		known[attr] = struct{}{}
		schema = append(schema, attr)
	}
	rows := make([]RFD, len(rfds))
	copy(rows, rfds)
	for i, r := range rows {
		if _, ok := known[r.rhs]; !ok {
			return Catalog{}, WrapError(ErrInvalidInput, "build catalog", fmt.Errorf("rfd %d: RHS %q is not a schema attribute", i, r.rhs))
		}
	}
	return Catalog{attrs: schema, rfds: rows}, nil
}

func (c Catalog) Len() int { return len(c.rfds) }

// Attributes returns the schema attribute names in order.
func (c Catalog) Attributes() []string {
	out := make([]string, len(c.attrs))
	copy(out, c.attrs)
	return out
}

func (c Catalog) HasAttribute(name string) bool {
	for _, attr := range c.attrs {
		if attr == name {
			return true
		}
	}
	return false
}

// RFDs returns the dependency rows in catalog order.
func (c Catalog) RFDs() []RFD {
	out := make([]RFD, len(c.rfds))
	copy(out, c.rfds)
	return out
}

// WithRFDs derives a catalog with the same schema and the given rows.
func (c Catalog) WithRFDs(rfds []RFD) Catalog {
	rows := make([]RFD, len(rfds))
	copy(rows, rfds)
	return Catalog{attrs: c.attrs, rfds: rows}
}
