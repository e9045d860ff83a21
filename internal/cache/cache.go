// Package cache implements the Cache Manager: acquisition, on-disk
// persistence, and budget-bounded eviction of HIP archive blobs pulled
// from content-library mirrors, S3 buckets, or a local Houdini install.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/houdini-kb/hipindex/internal/model"
	"golang.org/x/sync/singleflight"
)

var log = hiplog.For("cache")

// defaultRateLimit is the fixed spacing the spec mandates between
// successive acquisitions in a batch, so a bulk ingest run doesn't
// hammer a content-library mirror.
const defaultRateLimit = 2000 * time.Millisecond

// Source describes a single archive the caller wants resolved into a
// local, content-verified blob.
type Source struct {
	// ID is the manifest key: an "http(s)://" or "s3://" URL, or a bare
	// local filesystem path.
	ID          string
	Class       model.SourceClass
	Description string
	Systems     []string
}

// Manager is the Cache Manager. A zero Manager is not usable; construct
// one with NewManager.
type Manager struct {
	dir        string
	maxBytes   int64
	client     *http.Client
	userAgent  string
	rateLimit  time.Duration
	s3Endpoint S3Endpoint

	group singleflight.Group

	mu          sync.Mutex
	lastAcquire time.Time
}

// Options configures a Manager. RateLimit defaults to defaultRateLimit
// when nil; point it at a zero duration to disable throttling in tests. S3Endpoint
// is empty by default (plain AWS S3); set it to point s3:// sources at an
// S3-compatible bucket instead (localstack, MinIO).
type Options struct {
	Dir        string
	MaxBytes   int64
	UserAgent  string
	RateLimit  *time.Duration
	S3Endpoint S3Endpoint
}

func NewManager(opts Options) *Manager {
	rl := defaultRateLimit
	if opts.RateLimit != nil {
		rl = *opts.RateLimit
	}
	return &Manager{
		dir:        opts.Dir,
		maxBytes:   opts.MaxBytes,
		client:     newHTTPClient(),
		userAgent:  opts.UserAgent,
		rateLimit:  rl,
		s3Endpoint: opts.S3Endpoint,
	}
}

// Acquire resolves source to a locally cached, SHA256-verified blob. The
// returned bool reports whether the source resolved (true) versus a
// transient miss (false, nil error). A non-nil error indicates a real
// failure (disk I/O, manifest corruption) rather than the source simply
// being unavailable.
func (m *Manager) Acquire(ctx context.Context, source Source) (*model.CacheEntry, bool, error) {
	v, err, _ := m.group.Do(source.ID, func() (interface{}, error) {
		return m.acquireOnce(ctx, source)
	})
	if err != nil {
		if err == ErrMiss {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v.(*model.CacheEntry), true, nil
}

func (m *Manager) acquireOnce(ctx context.Context, source Source) (*model.CacheEntry, error) {
	var result *model.CacheEntry

	err := withManifestLock(m.dir, func() error {
		man, err := loadManifest(m.dir)
		if err != nil {
			return err
		}

		if existing, ok := man.Entries[source.ID]; ok {
			entry := existing
			result = &entry
			return nil
		}

		m.throttle()

		data, filename, err := m.fetch(ctx, source)
		if err != nil {
			return err
		}

		sum := sha256.Sum256(data)
		hexSum := hex.EncodeToString(sum[:])
		localName := fmt.Sprintf("%s-%s", hexSum[:12], sanitizeFilename(filename))
		localPath := filepath.Join(m.dir, localName)

		if err := os.MkdirAll(m.dir, 0o755); err != nil {
			return err
		}
		if err := writeAtomic(localPath, data); err != nil {
			return err
		}

		entry := model.CacheEntry{
			SourceID:     source.ID,
			SourceClass:  source.Class,
			LocalPath:    localPath,
			Filename:     filename,
			SHA256:       hexSum,
			Size:         int64(len(data)),
			DownloadedAt: time.Now(),
			Systems:      source.Systems,
			Description:  source.Description,
		}

		man.Entries[source.ID] = entry
		evict(man, m.maxBytes, source.ID)

		if err := saveManifest(m.dir, man); err != nil {
			return err
		}

		log.Info().Str("source", source.ID).Str("sha256", hexSum).Int64("size", entry.Size).Msg("acquired archive")
		result = &entry
		return nil
	})

	return result, err
}

func (m *Manager) throttle() {
	if m.rateLimit <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastAcquire.IsZero() {
		m.lastAcquire = time.Now()
		return
	}
	if wait := m.rateLimit - time.Since(m.lastAcquire); wait > 0 {
		time.Sleep(wait)
	}
	m.lastAcquire = time.Now()
}

// fetch dispatches on source scheme: http(s) URLs go through the tuned
// HTTP client, s3:// URLs through the S3 SDK, and anything else is
// treated as a local filesystem path already present on disk.
func (m *Manager) fetch(ctx context.Context, source Source) (data []byte, filename string, err error) {
	switch {
	case strings.HasPrefix(source.ID, "http://"), strings.HasPrefix(source.ID, "https://"):
		data, err = fetchHTTP(ctx, m.client, source.ID, m.userAgent)
		filename = filenameFromURL(source.ID)
	case strings.HasPrefix(source.ID, "s3://"):
		bucket, key, ok := parseS3URL(source.ID)
		if !ok {
			return nil, "", ErrMiss
		}
		data, err = fetchS3(ctx, bucket, key, m.s3Endpoint)
		filename = filenameOf(key)
	default:
		data, err = os.ReadFile(source.ID)
		if err != nil {
			return nil, "", ErrMiss
		}
		filename = filenameOf(source.ID)
	}
	return data, filename, err
}

func filenameFromURL(raw string) string {
	name := filenameOf(raw)
	if idx := strings.IndexByte(name, '?'); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// sanitizeFilename replaces every character outside [A-Za-z0-9._-] with
// '_' and truncates to 100 bytes, keeping cached blob names safe on any
// filesystem regardless of what the upstream source called them.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > 100 {
		out = out[:100]
	}
	if out == "" {
		out = "_"
	}
	return out
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ScanLocal populates the manifest with every .hip/.hipnc file found
// under roots, so a local Houdini install is discoverable through the
// same Acquire path as a network source on its next lookup.
func (m *Manager) ScanLocal(roots []string) error {
	found, err := scanLocal(roots)
	if err != nil {
		return err
	}

	return withManifestLock(m.dir, func() error {
		man, err := loadManifest(m.dir)
		if err != nil {
			return err
		}
		for _, ce := range found {
			man.Entries[ce.SourceID] = ce
		}
		return saveManifest(m.dir, man)
	})
}
