package usecase

import (
	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// CountMatches counts the dataset rows satisfying every query condition.
// A query with no conditions matches every row.
func CountMatches(query domain.Query, dataset domain.Dataset) (int, error) {
	attrs := query.Attributes()
	cols := make([][]domain.Value, len(attrs))
	conds := make([]domain.Condition, len(attrs))
	for i, attr := range attrs {
		col, err := dataset.Column(attr)
		if err != nil {
			return 0, err
		}
		cond, _ := query.Condition(attr)
		cols[i] = col
		conds[i] = cond
	}

	count := 0
	for row := 0; row < dataset.Len(); row++ {
		matched := true
		for i := range attrs {
			if !conds[i].Matches(cols[i][row]) {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return count, nil
}
