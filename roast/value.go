package roast

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindNull marks a value that could not be produced (null marker).
	KindNull ValueKind = iota
	// KindEmpty marks a deliberately empty cell (aliased field absent).
	KindEmpty
	// KindString holds text.
	KindString
	// KindNumber holds a number copied from the document; its JSON
	// literal is kept so passthrough rendering is byte-exact.
	KindNumber
	// KindFloat holds a number computed or coerced by the engine.
	KindFloat
	// KindBool holds a JSON boolean.
	KindBool
)

// Value is one output cell.
type Value struct {
	kind ValueKind
	text string
	num  float64
	b    bool
}

// Null returns the null marker.
func Null() Value { return Value{kind: KindNull} }

// Empty returns the empty-string cell.
func Empty() Value { return Value{kind: KindEmpty} }

// String returns a text cell.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Float returns a computed real-valued cell.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a cell for a number whose source literal is known.
func Number(literal string, f float64) Value {
	return Value{kind: KindNumber, text: literal, num: f}
}

// valueOf copies a JSON value verbatim.
func valueOf(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return Number(r.Raw, r.Num)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	default:
		return String(r.Raw)
	}
}

// Kind reports the variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the null marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float64 returns the numeric content of Number and Float cells.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindNumber, KindFloat:
		return v.num, true
	default:
		return 0, false
	}
}

// String renders the cell for CSV output. Null and empty both become "",
// booleans become True/False, and computed floats always carry a
// fractional part or an exponent.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindFloat:
		return formatFloat(v.num)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

// Interface returns a database/sql bindable representation.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindEmpty:
		return ""
	case KindString:
		return v.text
	case KindNumber:
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
		return v.num
	case KindFloat:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// formatFloat produces the shortest round-trip representation, switching
// to exponent form outside [1e-4, 1e16) and appending ".0" to integral
// values.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
