// Package store persists parsed scenes into a SQLite-backed knowledge
// base and computes parameter-usage aggregates on demand.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beam-cloud/ristretto"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/houdini-kb/hipindex/internal/model"
	_ "github.com/mattn/go-sqlite3"
)

var log = hiplog.For("store")

// aggregateCacheNumCounters bounds the number of distinct (node_type,
// param_name) keys ristretto tracks frequency for; well above any
// realistic number of node types times parameter names.
const aggregateCacheNumCounters = 1e6

// aggregateCacheMaxCost bounds the total cost of cached []ParamStats,
// where each cached result costs its row count plus one rather than a
// byte count, since a stats row is tiny
// compared to the archive/scene data flowing through the rest of the
// pipeline.
const aggregateCacheMaxCost = 1e5

// Store wraps the relational knowledge base: one row per archive in
// hip_files, many rows per archive in parameter_snapshots. aggregateCache
// memoizes Stats results the same way pkg/v2/cdn.go memoizes chunk and
// content-hash lookups: a ristretto.Cache keyed by the query parameters,
// invalidated wholesale on every Extract commit rather than by individual
// key, since ristretto has no prefix-delete primitive.
type Store struct {
	db             *sql.DB
	aggregateCache *ristretto.Cache[string, []ParamStats]
	aggregateTTL   time.Duration
}

// Open opens (creating if necessary) the SQLite-backed store at path and
// applies the schema. aggregateCacheTTL configures how long Stats results
// are memoized before falling stale; zero disables memoization.
func Open(path string, aggregateCacheTTL time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite3 driver: one writer at a time

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []ParamStats]{
		NumCounters: aggregateCacheNumCounters,
		MaxCost:     aggregateCacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initializing aggregate cache: %w", err)
	}

	return &Store{db: db, aggregateCache: cache, aggregateTTL: aggregateCacheTTL}, nil
}

func (s *Store) Close() error {
	s.aggregateCache.Close()
	return s.db.Close()
}

// ExtractionResult summarizes one successful Extract call.
type ExtractionResult struct {
	Nodes       int
	Parameters  int
	NonDefault  int
	Expressions int
}

// AlreadyParsed reports whether sha256 already has a hip_files row with
// parse_status = success, letting callers skip re-parsing unchanged
// archives per the idempotence requirement.
func (s *Store) AlreadyParsed(ctx context.Context, sha256 string) (bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT parse_status FROM hip_files WHERE file_hash = ?`, sha256).Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == string(model.ParseSuccess), nil
}

// RecordParseError upserts a hip_files row in error status without
// touching any parameter_snapshots, per the Archive Reader format-failure
// policy: the batch continues, the failure is recorded, snapshots are
// left untouched.
func (s *Store) RecordParseError(ctx context.Context, entry model.CacheEntry, parseErr error) error {
	systemsJSON, err := json.Marshal(entry.Systems)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hip_files (file_name, file_hash, source, source_url, description, systems, parsed_at, parse_status, parse_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			parsed_at = excluded.parsed_at,
			parse_status = excluded.parse_status,
			parse_error = excluded.parse_error
	`, entry.Filename, entry.SHA256, entry.SourceClass, entry.SourceID, entry.Description, string(systemsJSON), time.Now(), string(model.ParseError), parseErr.Error())
	if err != nil {
		return err
	}

	log.Warn().Str("source", entry.SourceID).Err(parseErr).Msg("archive parse failed")
	return nil
}

// Extract persists a successfully parsed Scene: upsert the hip_files
// record, delete-then-reinsert its parameter_snapshots, all inside one
// transaction so a cancellation leaves either the old or the new
// snapshot set intact, never a mix.
func (s *Store) Extract(ctx context.Context, scene *model.Scene, entry model.CacheEntry) (ExtractionResult, error) {
	var result ExtractionResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback() //nolint:errcheck

	systemsJSON, err := json.Marshal(entry.Systems)
	if err != nil {
		return result, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hip_files (file_name, file_hash, source, source_url, houdini_version, description, systems, node_count, parsed_at, parse_status, parse_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(file_hash) DO UPDATE SET
			houdini_version = excluded.houdini_version,
			node_count = excluded.node_count,
			parsed_at = excluded.parsed_at,
			parse_status = excluded.parse_status,
			parse_error = ''
	`, entry.Filename, entry.SHA256, entry.SourceClass, entry.SourceID, scene.HipVersion, entry.Description, string(systemsJSON), len(scene.Nodes), time.Now(), string(model.ParseSuccess))
	if err != nil {
		return result, err
	}

	var hipFileID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM hip_files WHERE file_hash = ?`, entry.SHA256).Scan(&hipFileID); err != nil {
		return result, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM parameter_snapshots WHERE hip_file_id = ?`, hipFileID); err != nil {
		return result, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parameter_snapshots (hip_file_id, node_type, node_path, param_name, param_value, is_default, expression)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return result, err
	}
	defer stmt.Close()

	result.Nodes = len(scene.Nodes)
	for _, n := range scene.Nodes {
		for _, p := range n.Parameters {
			isDefault := 0
			if p.IsDefault {
				isDefault = 1
			} else {
				result.NonDefault++
			}
			if p.Expression != "" {
				result.Expressions++
			}

			if _, err := stmt.ExecContext(ctx, hipFileID, n.Type, n.Path, p.Name, canonicalValue(p.Value), isDefault, p.Expression); err != nil {
				return result, err
			}
			result.Parameters++
		}
	}

	if err := tx.Commit(); err != nil {
		return ExtractionResult{}, err
	}

	// Every committed Extract can change any node type's aggregate, and
	// ristretto has no prefix/enumeration API to invalidate selectively,
	// so the whole memoization cache is dropped write-through.
	s.aggregateCache.Clear()

	return result, nil
}
