package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/houdini-kb/hipindex/internal/model"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sceneWithFloat(nodeType, paramName string, value float64, isDefault bool) *model.Scene {
	sc := model.NewScene()
	sc.HipVersion = "19.5.368"
	sc.AddNode(model.Node{
		Path:     "/obj/geo1/" + paramName,
		Type:     nodeType,
		Category: model.CategoryDOP,
		Name:     paramName,
		Parameters: []model.Parameter{
			{Name: paramName, Value: model.Value{Kind: model.ValueFloat, Float: value}, IsDefault: isDefault},
		},
	})
	return sc
}

func TestExtract_PersistsNodesAndSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc := sceneWithFloat("pyrosolver::2.0", "dissipation", 0.05, true)
	entry := model.CacheEntry{SHA256: "abc123", Filename: "shot.hip", SourceClass: model.SourceContentLibrary, SourceID: "https://x/shot.hip"}

	result, err := s.Extract(ctx, sc, entry)
	require.NoError(t, err)
	require.Equal(t, 1, result.Nodes)
	require.Equal(t, 1, result.Parameters)
	require.Equal(t, 0, result.NonDefault)

	done, err := s.AlreadyParsed(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, done)
}

func TestExtract_IsIdempotentOnRepeatedIdenticalBytes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc := sceneWithFloat("pyrosolver::2.0", "dissipation", 0.05, true)
	entry := model.CacheEntry{SHA256: "abc123", Filename: "shot.hip"}

	_, err := s.Extract(ctx, sc, entry)
	require.NoError(t, err)

	result2, err := s.Extract(ctx, sc, entry)
	require.NoError(t, err)
	require.Equal(t, 1, result2.Parameters)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parameter_snapshots`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestRecordParseError_DoesNotTouchSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := model.CacheEntry{SHA256: "deadbeef", Filename: "broken.hip"}
	_, err := s.Extract(ctx, sceneWithFloat("merge", "threshold", 1.0, false), entry)
	require.NoError(t, err)
	require.NoError(t, s.RecordParseError(ctx, entry, errBadHeader))

	done, err := s.AlreadyParsed(ctx, "deadbeef")
	require.NoError(t, err)
	require.False(t, done)

	var status string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT parse_status FROM hip_files WHERE file_hash = ?`, "deadbeef").Scan(&status))
	require.Equal(t, "error", status)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parameter_snapshots`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestStats_ConcreteAggregateExample(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	values := []float64{0.0, 0.1, 0.2, 0.3, 1.0}
	for i, v := range values {
		sc := model.NewScene()
		sc.AddNode(model.Node{
			Path: "/obj/geo1/solver",
			Type: "pyrosolver",
			Parameters: []model.Parameter{
				{Name: "dissipation", Value: model.Value{Kind: model.ValueFloat, Float: v}, IsDefault: v == 0.0},
			},
		})
		entry := model.CacheEntry{SHA256: hashFor(i)}
		_, err := s.Extract(ctx, sc, entry)
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx, "pyrosolver", "dissipation")
	require.NoError(t, err)
	require.Len(t, stats, 1)

	row := stats[0]
	require.InDelta(t, 0.0, row.Min, 1e-9)
	require.InDelta(t, 1.0, row.Max, 1e-9)
	require.InDelta(t, 0.32, row.Mean, 1e-9)
	require.InDelta(t, 0.1, row.UsageRangeLo, 1e-9)
	require.InDelta(t, 0.9, row.UsageRangeHi, 1e-9)
}

func TestStats_UsageRangeAlwaysWithinMinMax(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, v := range []float64{-5.0, 2.0, 100.0} {
		sc := sceneWithFloat("merge", "threshold", v, false)
		entry := model.CacheEntry{SHA256: hashFor(i)}
		_, err := s.Extract(ctx, sc, entry)
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx, "merge", "threshold")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.GreaterOrEqual(t, stats[0].UsageRangeLo, stats[0].Min)
	require.LessOrEqual(t, stats[0].UsageRangeHi, stats[0].Max)
}

func TestStats_ExcludesParametersWithFewerThanTwoSamples(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc := sceneWithFloat("merge", "lonely", 1.0, true)
	entry := model.CacheEntry{SHA256: "only-one"}
	_, err := s.Extract(ctx, sc, entry)
	require.NoError(t, err)

	stats, err := s.Stats(ctx, "merge", "lonely")
	require.NoError(t, err)
	require.Empty(t, stats)
}

func TestStats_ReflectsExtractAfterCachedRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, v := range []float64{1.0, 2.0} {
		sc := sceneWithFloat("merge", "threshold", v, false)
		entry := model.CacheEntry{SHA256: hashFor(i)}
		_, err := s.Extract(ctx, sc, entry)
		require.NoError(t, err)
	}

	first, err := s.Stats(ctx, "merge", "threshold")
	require.NoError(t, err)
	require.InDelta(t, 1.5, first[0].Mean, 1e-9)

	sc := sceneWithFloat("merge", "threshold", 30.0, false)
	entry := model.CacheEntry{SHA256: hashFor(2)}
	_, err = s.Extract(ctx, sc, entry)
	require.NoError(t, err)

	second, err := s.Stats(ctx, "merge", "threshold")
	require.NoError(t, err)
	require.InDelta(t, 11.0, second[0].Mean, 1e-9)
}

func hashFor(i int) string {
	const hexDigits = "0123456789abcdef"
	return "hash" + string(hexDigits[i%16]) + string(hexDigits[(i/16)%16])
}

var errBadHeader = fakeErr("bad-header")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
