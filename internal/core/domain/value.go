package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindDecimal
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is one scalar cell: a query constant, a dataset cell or a member of
// a relaxed value set. Values are immutable.
type Value interface {
	Kind() Kind
	// Equal reports whether two values match for query evaluation. Number
	// and Decimal compare numerically across kinds; Null equals nothing,
	// itself included.
	Equal(other Value) bool
	String() string
}

// Relaxable is the capability of value kinds that can widen into an ordered
// set of acceptable values under a threshold. column is the dataset column
// of the attribute being relaxed; kinds that derive the set arithmetically
// ignore it.
type Relaxable interface {
	Value
	Relax(threshold float64, column []Value) ([]Value, error)
}

type (
	// Number is an integer-valued cell.
	Number int64
	// Decimal is a floating-point cell.
	Decimal float64
	// Text is a string cell.
	Text string
	// Null is a missing cell.
	Null struct{}
)

func (Number) Kind() Kind  { return KindNumber }
func (Decimal) Kind() Kind { return KindDecimal }
func (Text) Kind() Kind    { return KindText }
func (Null) Kind() Kind    { return KindNull }

func (n Number) Equal(other Value) bool {
	switch o := other.(type) {
	case Number:
		return n == o
	case Decimal:
		return float64(n) == float64(o)
	default:
		return false
	}
}

func (d Decimal) Equal(other Value) bool {
	switch o := other.(type) {
	case Decimal:
		return d == o
	case Number:
		return float64(d) == float64(o)
	default:
		return false
	}
}

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && t == o
}

func (Null) Equal(Value) bool { return false }

func (n Number) String() string { return strconv.FormatInt(int64(n), 10) }
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64)
}
func (t Text) String() string { return string(t) }
func (Null) String() string   { return "null" }

// maxRelaxSpan caps how many values one numeric relaxation may materialize.
const maxRelaxSpan = 1 << 20

// Relax widens a number into the inclusive range [n-threshold, n+threshold].
// Fractional bounds are truncated toward negative infinity, so a threshold
// of 2.5 around 30 yields 27..32.
func (n Number) Relax(threshold float64, _ []Value) ([]Value, error) {
	lo, hi, err := relaxBounds(float64(n), threshold)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, Number(v))
	}
	return out, nil
}

// Relax widens an integer-valued decimal the same way Number does. A
// fractional decimal cannot widen into an integer range without dropping
// rows its own value matches, so it is rejected instead.
func (d Decimal) Relax(threshold float64, _ []Value) ([]Value, error) {
	if float64(d) != math.Trunc(float64(d)) {
		return nil, WrapError(ErrUnsupportedValue, "relax decimal",
			fmt.Errorf("non-integer value %v has no integer range", float64(d)))
	}
	lo, hi, err := relaxBounds(float64(d), threshold)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, Number(v))
	}
	return out, nil
}

func relaxBounds(center, threshold float64) (int64, int64, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return 0, 0, WrapError(ErrInvalidInput, "relax numeric", fmt.Errorf("threshold %v is not a usable bound", threshold))
	}
	if math.IsNaN(center) || math.IsInf(center, 0) {
		return 0, 0, WrapError(ErrInvalidInput, "relax numeric", fmt.Errorf("center %v is not a usable value", center))
	}
	loF := math.Floor(center - threshold)
	hiF := math.Floor(center + threshold)
	// Bounds are checked in the float domain: converting an out-of-range
	// float to int64 is implementation-defined.
	if hiF-loF+1 > maxRelaxSpan || math.Abs(loF) > math.MaxInt64/2 || math.Abs(hiF) > math.MaxInt64/2 {
		return 0, 0, WrapError(ErrInvalidInput, "relax numeric", fmt.Errorf("range [%v, %v] is too wide to materialize", loF, hiF))
	}
	return int64(loF), int64(hiF), nil
}

// Relax widens a text value into the dataset values within edit distance
// floor(threshold) of it. Duplicates and column order are preserved.
func (t Text) Relax(threshold float64, column []Value) ([]Value, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, WrapError(ErrInvalidInput, "relax text", fmt.Errorf("threshold %v is not a usable bound", threshold))
	}
	return SimilarStrings(string(t), column, int(math.Floor(threshold))), nil
}

// SimilarStrings returns every text value in column whose edit distance to
// source is at most bound. Column order and duplicates are preserved; cells
// that are not text are skipped. A bound of zero selects exact occurrences.
func SimilarStrings(source string, column []Value, bound int) []Value {
	out := make([]Value, 0)
	if bound < 0 {
		return out
	}
	for _, cell := range column {
		text, ok := cell.(Text)
		if !ok {
			continue
		}
		if levenshtein.ComputeDistance(source, string(text)) <= bound {
			out = append(out, text)
		}
	}
	return out
}

// ParseValue builds a Value from a raw tabular cell. Empty cells are Null,
// integer-looking cells Number, other numerics Decimal, the rest Text.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Number(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Decimal(f)
	}
	return Text(s)
}

// ValueOf converts a scanned database value into a domain Value.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case int64:
		return Number(x)
	case int:
		return Number(int64(x))
	case int32:
		return Number(int64(x))
	case float64:
		return Decimal(x)
	case float32:
		return Decimal(float64(x))
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case bool:
		return Text(strconv.FormatBool(x))
	case time.Time:
		return Text(x.Format(time.RFC3339))
	default:
		return Text(fmt.Sprint(x))
	}
}

func valueToJSON(v Value) any {
	switch x := v.(type) {
	case Number:
		return int64(x)
	case Decimal:
		return float64(x)
	case Text:
		return string(x)
	default:
		return nil
	}
}

func valueFromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null{}, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Number(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, WrapError(ErrInvalidInput, "decode value", err)
		}
		return Decimal(f), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return Number(int64(x)), nil
		}
		return Decimal(x), nil
	case string:
		return Text(x), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	default:
		return nil, WrapError(ErrUnsupportedValue, "decode value", fmt.Errorf("unexpected JSON type %T", raw))
	}
}
