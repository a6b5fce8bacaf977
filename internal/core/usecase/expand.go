package usecase

import (
	"fmt"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// ExpandQuery widens every scalar query attribute the dependency bounds
// with a positive threshold into its acceptable value set: numerics into
// the materialized inclusive range, text into the similar dataset values.
// Attributes the dependency leaves unbounded, thresholds at or below zero
// and conditions already holding a set pass through untouched. The input
// query is never modified.
func ExpandQuery(query domain.Query, rfd domain.RFD, dataset domain.Dataset) (domain.Query, error) {
	out := query
	for _, attr := range query.Attributes() {
		cond, _ := query.Condition(attr)
		if cond.IsSet() {
			continue
		}
		threshold, ok := rfd.Threshold(attr)
		if !ok || threshold <= 0 {
			continue
		}
		scalar, _ := cond.Scalar()
		relaxable, ok := scalar.(domain.Relaxable)
		if !ok {
			return domain.Query{}, domain.WrapError(domain.ErrUnsupportedValue, "expand query",
				fmt.Errorf("attribute %q holds a %s value", attr, scalar.Kind()))
		}
		var column []domain.Value
		if scalar.Kind() == domain.KindText {
			col, err := dataset.Column(attr)
			if err != nil {
				return domain.Query{}, err
			}
			column = col
		}
		values, err := relaxable.Relax(threshold, column)
		if err != nil {
			return domain.Query{}, fmt.Errorf("attribute %q: %w", attr, err)
		}
		out = out.WithCondition(attr, domain.AnyOf(values))
	}
	return out, nil
}
