package usecase

import (
	"sort"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// RankCandidates orders dependencies most-general first: by the number of
// unbounded schema attributes descending, then per query attribute in query
// order by threshold ascending with unbounded rows first. Ties keep their
// catalog order.
func RankCandidates(catalog domain.Catalog, query domain.Query) domain.Catalog {
	type ranked struct {
		rfd       domain.RFD
		wildcards int
	}
	rows := make([]ranked, 0, catalog.Len())
	for _, rfd := range catalog.RFDs() {
		rows = append(rows, ranked{rfd: rfd, wildcards: rfd.WildcardCount()})
	}
	attrs := query.Attributes()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].wildcards != rows[j].wildcards {
			return rows[i].wildcards > rows[j].wildcards
		}
		for _, attr := range attrs {
			ti, iok := rows[i].rfd.Threshold(attr)
			tj, jok := rows[j].rfd.Threshold(attr)
			switch {
			case !iok && !jok:
				continue
			case !iok:
				return true
			case !jok:
				return false
			case ti != tj:
				return ti < tj
			}
		}
		return false
	})

	out := make([]domain.RFD, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.rfd)
	}
	return catalog.WithRFDs(out)
}
