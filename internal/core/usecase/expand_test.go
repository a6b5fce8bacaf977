package usecase

import (
	"testing"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

func cityDataset(t *testing.T) domain.Dataset {
	t.Helper()
	return mustDataset(t, []string{"age", "city", "price"}, map[string][]domain.Value{
		"age":   {domain.Number(28), domain.Number(35), domain.Number(31)},
		"city":  {domain.Text("Roma"), domain.Text("Turin"), domain.Text("Rome")},
		"price": {domain.Number(120), domain.Number(60), domain.Number(100)},
	})
}

func TestExpandQueryWidensNumericAndText(t *testing.T) {
	attrs := []string{"age", "city", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"age": 2, "city": 1, "price": 10})
	query := mustQuery(t,
		domain.Binding{Attr: "age", Value: domain.Number(30)},
		domain.Binding{Attr: "city", Value: domain.Text("Rome")},
	)

	widened, err := ExpandQuery(query, rfd, cityDataset(t))
	if err != nil {
		t.Fatalf("ExpandQuery() error = %v", err)
	}

	ageCond, _ := widened.Condition("age")
	ageValues := ageCond.Values()
	if len(ageValues) != 5 || ageValues[0] != domain.Number(28) || ageValues[4] != domain.Number(32) {
		t.Fatalf("expected age range 28..32, got %v", ageValues)
	}
	cityCond, _ := widened.Condition("city")
	cityValues := cityCond.Values()
	if len(cityValues) != 2 || cityValues[0] != domain.Text("Roma") || cityValues[1] != domain.Text("Rome") {
		t.Fatalf("expected similar cities in dataset order, got %v", cityValues)
	}
}

func TestExpandQueryLeavesOriginalUntouched(t *testing.T) {
	attrs := []string{"age", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"age": 2, "price": 10})
	query := mustQuery(t, domain.Binding{Attr: "age", Value: domain.Number(30)})

	if _, err := ExpandQuery(query, rfd, cityDataset(t)); err != nil {
		t.Fatalf("ExpandQuery() error = %v", err)
	}
	cond, _ := query.Condition("age")
	if cond.IsSet() {
		t.Fatalf("expected the input query to keep its scalar condition")
	}
}

func TestExpandQuerySkipsUnboundedAndNonPositiveThresholds(t *testing.T) {
	attrs := []string{"age", "city", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"city": 0, "price": 10})
	query := mustQuery(t,
		domain.Binding{Attr: "age", Value: domain.Number(30)},
		domain.Binding{Attr: "city", Value: domain.Text("Rome")},
	)

	widened, err := ExpandQuery(query, rfd, cityDataset(t))
	if err != nil {
		t.Fatalf("ExpandQuery() error = %v", err)
	}
	ageCond, _ := widened.Condition("age")
	if ageCond.IsSet() {
		t.Fatalf("expected the unbounded age attribute untouched")
	}
	cityCond, _ := widened.Condition("city")
	if cityCond.IsSet() {
		t.Fatalf("expected the zero-threshold city attribute untouched")
	}
}

func TestExpandQuerySkipsSetConditions(t *testing.T) {
	attrs := []string{"age", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"age": 5, "price": 10})
	query := mustQuery(t, domain.Binding{Attr: "age", Value: domain.Number(30)})
	query = query.WithCondition("age", domain.AnyOf([]domain.Value{domain.Number(29), domain.Number(30)}))

	widened, err := ExpandQuery(query, rfd, cityDataset(t))
	if err != nil {
		t.Fatalf("ExpandQuery() error = %v", err)
	}
	cond, _ := widened.Condition("age")
	if len(cond.Values()) != 2 {
		t.Fatalf("expected the existing set kept as is, got %v", cond.Values())
	}
}

func TestExpandQueryRejectsUnsupportedKind(t *testing.T) {
	attrs := []string{"note", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"note": 1, "price": 10})
	query := mustQuery(t, domain.Binding{Attr: "note", Value: domain.Null{}})

	_, err := ExpandQuery(query, rfd, cityDataset(t))
	if !domain.IsKind(err, domain.ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue for a null query value, got %v", err)
	}
}

func TestExpandQueryTextNeedsDatasetColumn(t *testing.T) {
	attrs := []string{"district", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"district": 1, "price": 10})
	query := mustQuery(t, domain.Binding{Attr: "district", Value: domain.Text("Trastevere")})

	_, err := ExpandQuery(query, rfd, cityDataset(t))
	if !domain.IsKind(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for a text attribute missing from the dataset, got %v", err)
	}
}

func TestExpandQueryEmptySimilaritySetMatchesNothing(t *testing.T) {
	attrs := []string{"city", "price"}
	rfd := mustRFD(t, "price", attrs, map[string]float64{"city": 1, "price": 10})
	query := mustQuery(t, domain.Binding{Attr: "city", Value: domain.Text("Tokyo")})

	widened, err := ExpandQuery(query, rfd, cityDataset(t))
	if err != nil {
		t.Fatalf("ExpandQuery() error = %v", err)
	}
	cond, _ := widened.Condition("city")
	if !cond.IsSet() || len(cond.Values()) != 0 {
		t.Fatalf("expected an empty set condition, got %v", cond)
	}
	if cond.Matches(domain.Text("Rome")) {
		t.Fatalf("expected the empty set to match nothing")
	}
}
