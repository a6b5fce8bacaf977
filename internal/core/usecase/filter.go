package usecase

import (
	"fmt"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// FilterMissingThresholds drops dependencies that leave any query attribute
// unbounded; such rows cannot steer how far that attribute may widen. Every
// query attribute must exist in the catalog schema.
func FilterMissingThresholds(catalog domain.Catalog, query domain.Query) (domain.Catalog, error) {
	for _, attr := range query.Attributes() {
		if !catalog.HasAttribute(attr) {
			return domain.Catalog{}, domain.WrapError(domain.ErrSchemaMismatch, "filter candidates",
				fmt.Errorf("query attribute %q is not in the catalog schema", attr))
		}
	}
	attrs := query.Attributes()
	kept := make([]domain.RFD, 0, catalog.Len())
	for _, rfd := range catalog.RFDs() {
		if boundsAll(rfd, attrs) {
			kept = append(kept, rfd)
		}
	}
	return catalog.WithRFDs(kept), nil
}

func boundsAll(rfd domain.RFD, attrs []string) bool {
	for _, attr := range attrs {
		if _, ok := rfd.Threshold(attr); !ok {
			return false
		}
	}
	return true
}

// FilterConflictingRHS drops dependencies whose dependent attribute is
// itself constrained by the query; widening toward a fixed target cannot
// produce new rows.
func FilterConflictingRHS(catalog domain.Catalog, query domain.Query) domain.Catalog {
	kept := make([]domain.RFD, 0, catalog.Len())
	for _, rfd := range catalog.RFDs() {
		if _, constrained := query.Condition(rfd.RHS()); constrained {
			continue
		}
		kept = append(kept, rfd)
	}
	return catalog.WithRFDs(kept)
}

// FilterCandidates applies both candidate filters in order.
func FilterCandidates(catalog domain.Catalog, query domain.Query) (domain.Catalog, error) {
	filtered, err := FilterMissingThresholds(catalog, query)
	if err != nil {
		return domain.Catalog{}, err
	}
	return FilterConflictingRHS(filtered, query), nil
}
