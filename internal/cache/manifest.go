package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/houdini-kb/hipindex/internal/model"
)

const manifestFilename = "manifest.json"

var manifestLog = hiplog.For("cache.manifest")

type manifest struct {
	Version     int                         `json:"version"`
	Entries     map[string]model.CacheEntry `json:"entries"`
	LastUpdated time.Time                   `json:"lastUpdated"`
}

func newManifest() *manifest {
	return &manifest{Version: 1, Entries: make(map[string]model.CacheEntry)}
}

// loadManifest reads the manifest JSON document, dropping any entry whose
// local file no longer exists — the teacher's note that readers must
// tolerate a manifest pointing at an absent file across crashes, since
// the blob is persisted before the manifest is rewritten, not after.
func loadManifest(dir string) (*manifest, error) {
	path := filepath.Join(dir, manifestFilename)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newManifest(), nil
	}
	if err != nil {
		return nil, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		manifestLog.Warn().Err(err).Msg("manifest unreadable, starting fresh")
		return newManifest(), nil
	}
	if m.Entries == nil {
		m.Entries = make(map[string]model.CacheEntry)
	}

	for id, ce := range m.Entries {
		if _, statErr := os.Stat(ce.LocalPath); statErr != nil {
			manifestLog.Debug().Str("source", id).Msg("dropping manifest row: blob missing")
			delete(m.Entries, id)
		}
	}

	return &m, nil
}

// saveManifest performs a write-temp + rename atomic rewrite so readers
// never observe a half-written manifest.
func saveManifest(dir string, m *manifest) error {
	m.LastUpdated = time.Now()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, manifestFilename)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// withManifestLock serializes manifest read-modify-write cycles across
// processes sharing a cache directory via an OS file lock on a ".lock"
// sibling, per SPEC_FULL.md's concurrency-safety addition to the Cache
// Manager.
func withManifestLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	fl := flock.New(filepath.Join(dir, manifestFilename+".lock"))
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()

	return fn()
}
