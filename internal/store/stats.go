package store

import (
	"context"
)

// aggregateCacheKey identifies a memoized Stats call. paramName may be
// empty, meaning "every parameter name under nodeType" — that distinction
// must survive into the key or the two queries would collide.
func aggregateCacheKey(nodeType, paramName string) string {
	return nodeType + "\x00" + paramName
}

// ParamStats is one row of the parameter-usage aggregate reported to the
// annotation layer.
type ParamStats struct {
	NodeType      string
	ParamName     string
	SampleCount   int
	Min           float64
	Max           float64
	Mean          float64
	ModifiedCount int
	UsageRangeLo  float64
	UsageRangeHi  float64
}

// minSamplesForSummary excludes parameters too sparse to summarize
// meaningfully from human-facing output.
const minSamplesForSummary = 2

// Stats computes, per parameter name, the sample count/min/max/mean and
// the modified (non-default) count over every parameter_snapshots row
// whose param_value is numerically parseable. When paramName is empty,
// every parameter name observed under nodeType is aggregated.
func (s *Store) Stats(ctx context.Context, nodeType, paramName string) ([]ParamStats, error) {
	key := aggregateCacheKey(nodeType, paramName)
	if s.aggregateTTL > 0 {
		if cached, ok := s.aggregateCache.Get(key); ok {
			return cached, nil
		}
	}

	out, err := s.computeStats(ctx, nodeType, paramName)
	if err != nil {
		return nil, err
	}

	if s.aggregateTTL > 0 {
		s.aggregateCache.SetWithTTL(key, out, int64(len(out)+1), s.aggregateTTL)
	}

	return out, nil
}

// computeStats runs the uncached aggregate query; Stats wraps it with
// ristretto memoization.
func (s *Store) computeStats(ctx context.Context, nodeType, paramName string) ([]ParamStats, error) {
	query := `SELECT param_name, param_value, is_default FROM parameter_snapshots WHERE node_type = ?`
	args := []interface{}{nodeType}
	if paramName != "" {
		query += ` AND param_name = ?`
		args = append(args, paramName)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type acc struct {
		count, modified int
		min, max, sum   float64
		seenOne         bool
	}
	byParam := make(map[string]*acc)

	for rows.Next() {
		var name, value string
		var isDefault int
		if err := rows.Scan(&name, &value, &isDefault); err != nil {
			return nil, err
		}

		f, ok := parseNumeric(value)
		if !ok {
			continue
		}

		a, exists := byParam[name]
		if !exists {
			a = &acc{min: f, max: f}
			byParam[name] = a
		}
		if !a.seenOne {
			a.min, a.max = f, f
			a.seenOne = true
		}
		if f < a.min {
			a.min = f
		}
		if f > a.max {
			a.max = f
		}
		a.sum += f
		a.count++
		if isDefault == 0 {
			a.modified++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []ParamStats
	for name, a := range byParam {
		if a.count < minSamplesForSummary {
			continue
		}

		span := a.max - a.min
		lo := a.min + 0.1*span
		hi := a.max - 0.1*span
		if lo < a.min {
			lo = a.min
		}
		if hi > a.max {
			hi = a.max
		}

		out = append(out, ParamStats{
			NodeType:      nodeType,
			ParamName:     name,
			SampleCount:   a.count,
			Min:           a.min,
			Max:           a.max,
			Mean:          a.sum / float64(a.count),
			ModifiedCount: a.modified,
			UsageRangeLo:  lo,
			UsageRangeHi:  hi,
		})
	}

	return out, nil
}
