package scene

import (
	"math"
	"strconv"
	"strings"

	"github.com/houdini-kb/hipindex/internal/model"
)

// coerceValue applies the three-step coercion ladder from spec.md 4.3:
// a bare finite float, then a whitespace-separated sequence of floats,
// then quoted-or-bare text.
func coerceValue(raw string) model.Value {
	trimmed := strings.TrimSpace(raw)

	if f, ok := parseCanonicalFloat(trimmed); ok {
		return model.Value{Kind: model.ValueFloat, Float: f}
	}

	if fields := strings.Fields(trimmed); len(fields) > 1 {
		seq := make([]float64, 0, len(fields))
		allNumeric := true
		for _, tok := range fields {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				allNumeric = false
				break
			}
			seq = append(seq, f)
		}
		if allNumeric {
			return model.Value{Kind: model.ValueFloatSeq, Seq: seq}
		}
	}

	return model.Value{Kind: model.ValueText, Text: unquote(trimmed)}
}

// parseCanonicalFloat reports whether trimmed is a finite float64 whose
// canonical decimal form round-trips back to the same string, matching
// spec.md's "canonical string form equals the trimmed input" test.
func parseCanonicalFloat(trimmed string) (float64, bool) {
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if canonicalFloatString(f) != trimmed {
		return 0, false
	}
	return f, true
}

func canonicalFloatString(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// unquote strips one leading and one trailing quote character when they
// match and are symmetric.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
