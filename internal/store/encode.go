package store

import (
	"strconv"
	"strings"

	"github.com/houdini-kb/hipindex/internal/model"
)

// canonicalValue renders a Parameter's Value the way it is persisted: a
// plain float string, a JSON-style array of floats, or a quoted string.
// This is the inverse of the coercion the scene parser performs, kept
// separate so the store owns its own on-disk text format.
func canonicalValue(v model.Value) string {
	switch v.Kind {
	case model.ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case model.ValueFloatSeq:
		var b strings.Builder
		b.WriteByte('[')
		for i, f := range v.Seq {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return strconv.Quote(v.Text)
	}
}

// isNumeric matches the leading-sign, decimal-digit form the
// aggregator treats as a usable numeric sample. JSON-array and quoted
// text encodings never match, so sequences and strings are excluded
// from aggregates without a separate type check.
func isNumeric(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digitsBefore := i > start
	if i < len(s) && s[i] == '.' {
		i++
		start2 := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start2 && !digitsBefore {
			return false
		}
	} else if !digitsBefore {
		return false
	}
	return i == len(s) && i > 0
}

func parseNumeric(s string) (float64, bool) {
	if !isNumeric(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
