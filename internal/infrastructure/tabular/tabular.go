package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// RHSColumn is the catalog column naming each row's dependent attribute.
const RHSColumn = "RHS"

// BuildCatalog assembles a dependency catalog from a tabular sheet: one RHS
// column holding the dependent attribute name per row, one threshold column
// per dataset attribute, blank cells meaning no bound.
func BuildCatalog(header []string, rows [][]string) (domain.Catalog, error) {
	names := trimmed(header)
	rhsIdx := -1
	attrs := make([]string, 0, len(names))
	for i, name := range names {
		if name == RHSColumn {
			if rhsIdx != -1 {
				return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "build catalog",
					fmt.Errorf("duplicate %s column", RHSColumn))
			}
			rhsIdx = i
			continue
		}
		attrs = append(attrs, name)
	}
	if rhsIdx == -1 {
		return domain.Catalog{}, domain.WrapError(domain.ErrSchemaMismatch, "build catalog",
			fmt.Errorf("missing %s column", RHSColumn))
	}

	rfds := make([]domain.RFD, 0, len(rows))
	for rowNum, row := range rows {
		rhs := cellAt(row, rhsIdx)
		if rhs == "" {
			return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "build catalog",
				fmt.Errorf("row %d has no %s value", rowNum+1, RHSColumn))
		}
		thresholds := make(map[string]float64)
		for i, name := range names {
			if i == rhsIdx {
				continue
			}
			raw := cellAt(row, i)
			if raw == "" {
				continue
			}
			t, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "build catalog",
					fmt.Errorf("row %d: threshold %q for %q is not numeric", rowNum+1, raw, name))
			}
			thresholds[name] = t
		}
		rfd, err := domain.NewRFD(rhs, attrs, thresholds)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("row %d: %w", rowNum+1, err)
		}
		rfds = append(rfds, rfd)
	}
	return domain.NewCatalog(attrs, rfds)
}

// BuildDataset assembles the search-space table from a header and rows,
// classifying each cell with domain.ParseValue. Short rows are padded with
// null cells.
func BuildDataset(header []string, rows [][]string) (domain.Dataset, error) {
	attrs := trimmed(header)
	cols := make(map[string][]domain.Value, len(attrs))
	for _, attr := range attrs {
		cols[attr] = make([]domain.Value, 0, len(rows))
	}
	for _, row := range rows {
		for i, attr := range attrs {
			raw := ""
			if i < len(row) {
				raw = row[i]
			}
			cols[attr] = append(cols[attr], domain.ParseValue(raw))
		}
	}
	return domain.NewDataset(attrs, cols)
}

func trimmed(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = strings.TrimSpace(name)
	}
	return out
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
