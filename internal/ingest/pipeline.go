// Package ingest wires the Archive Reader, Text Filter, Scene Parser,
// Cache Manager, and Store into the one pipeline the CLI drives per
// archive: acquire, decode, parse, extract.
package ingest

import (
	"context"
	"os"

	"github.com/houdini-kb/hipindex/internal/cache"
	"github.com/houdini-kb/hipindex/internal/cpio"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/houdini-kb/hipindex/internal/model"
	"github.com/houdini-kb/hipindex/internal/scene"
	"github.com/houdini-kb/hipindex/internal/store"
	"github.com/houdini-kb/hipindex/internal/textfilter"
)

var log = hiplog.For("ingest")

// Progress is called once per archive with (done, total, identifier), and
// once more when the batch ends with done == total and an empty identifier.
type Progress func(done, total int, identifier string)

// Summary reports the outcome of one batch run.
type Summary struct {
	Parsed int
	Failed int
	Rows   int
}

// ParseBytes runs the Archive Reader, Text Filter, and Scene Parser over
// one archive's raw bytes. A format failure from the Archive Reader is
// returned as-is; intra-scene anomalies never surface here, they are
// absorbed by the Scene Parser.
func ParseBytes(data []byte) (*model.Scene, error) {
	entries, err := cpio.Read(data)
	if err != nil {
		return nil, err
	}

	textEntries := make([]cpio.Entry, 0, len(entries))
	for _, e := range entries {
		if textfilter.IsText(e.Data) {
			textEntries = append(textEntries, e)
		}
	}

	return scene.Parse(textEntries), nil
}

// Run acquires each source, parses it, and persists the result, never
// aborting the batch on a single archive's failure: a failed acquisition,
// unreadable blob, format failure, or failed extract is counted in
// Summary.Failed and the batch goes on. An error from the store's
// AlreadyParsed lookup or from RecordParseError ends the run.
func Run(ctx context.Context, mgr *cache.Manager, st *store.Store, sources []cache.Source, progress Progress) (Summary, error) {
	var summary Summary

	for i, src := range sources {
		if progress != nil {
			progress(i, len(sources), src.ID)
		}

		entry, ok, err := mgr.Acquire(ctx, src)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID).Msg("acquisition failed, skipping")
			summary.Failed++
			continue
		}
		if !ok {
			log.Warn().Str("source", src.ID).Msg("acquisition miss, skipping")
			summary.Failed++
			continue
		}

		already, err := st.AlreadyParsed(ctx, entry.SHA256)
		if err != nil {
			return summary, err
		}
		if already {
			log.Debug().Str("source", src.ID).Msg("archive already parsed, skipping")
			summary.Parsed++
			continue
		}

		data, err := os.ReadFile(entry.LocalPath)
		if err != nil {
			summary.Failed++
			continue
		}

		sc, err := ParseBytes(data)
		if err != nil {
			if recErr := st.RecordParseError(ctx, *entry, err); recErr != nil {
				return summary, recErr
			}
			summary.Failed++
			continue
		}

		result, err := st.Extract(ctx, sc, *entry)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID).Msg("extract failed, skipping")
			summary.Failed++
			continue
		}

		summary.Parsed++
		summary.Rows += result.Parameters
	}

	if progress != nil {
		progress(len(sources), len(sources), "")
	}

	return summary, nil
}
