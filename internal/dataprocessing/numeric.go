package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a raw cell to a float. Strings are trimmed and thousands
// separators dropped; anything non-numeric or non-finite is absent.
func ToNumber(c Cell) NullFloat {
	switch c.Kind {
	case CellNumber:
		if math.IsInf(c.Num, 0) {
			return NullFloat{}
		}
		return SomeFloat(c.Num)
	case CellString:
		s := strings.ReplaceAll(strings.TrimSpace(c.Str), ",", "")
		if s == "" {
			return NullFloat{}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return NullFloat{}
		}
		return SomeFloat(f)
	default:
		return NullFloat{}
	}
}

// NumberColumn coerces every cell of a column.
func NumberColumn(values []Cell) []NullFloat {
	out := make([]NullFloat, len(values))
	for i, v := range values {
		out[i] = ToNumber(v)
	}
	return out
}
