package cache

import (
	"os"
	"sort"

	"github.com/houdini-kb/hipindex/internal/hiplog"
)

var evictionLog = hiplog.For("cache.eviction")

// evict repeatedly removes the oldest entry (by DownloadedAt) until the
// manifest's total size is within maxBytes. protectedID is never
// evicted, even if it happens to be the oldest — it is the entry the
// current call just created.
func evict(m *manifest, maxBytes int64, protectedID string) {
	for totalSize(m) > maxBytes {
		oldestID, found := oldestEvictable(m, protectedID)
		if !found {
			return
		}

		entry := m.Entries[oldestID]
		if entry.LocalPath != "" {
			if err := os.Remove(entry.LocalPath); err != nil && !os.IsNotExist(err) {
				evictionLog.Warn().Err(err).Str("path", entry.LocalPath).Msg("failed to remove evicted blob")
			}
		}
		delete(m.Entries, oldestID)
		evictionLog.Debug().Str("source", oldestID).Int64("size", entry.Size).Msg("evicted cache entry")
	}
}

func totalSize(m *manifest) int64 {
	var total int64
	for _, e := range m.Entries {
		total += e.Size
	}
	return total
}

func oldestEvictable(m *manifest, protectedID string) (string, bool) {
	ids := make([]string, 0, len(m.Entries))
	for id := range m.Entries {
		if id == protectedID {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return "", false
	}

	sort.Slice(ids, func(i, j int) bool {
		return m.Entries[ids[i]].DownloadedAt.Before(m.Entries[ids[j]].DownloadedAt)
	})
	return ids[0], true
}
