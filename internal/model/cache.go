package model

import "time"

// SourceClass is the closed set of places a cached archive can have come
// from.
type SourceClass string

const (
	SourceContentLibrary SourceClass = "content_library"
	SourceExamples       SourceClass = "examples"
	SourceLocalInstall   SourceClass = "local_install"
	SourceCommunity      SourceClass = "community"
)

// CacheEntry is one entry in the Cache Manager's manifest: a source
// identifier paired with the local blob it resolved to.
type CacheEntry struct {
	SourceID     string // URL or local path, used as the manifest key
	SourceClass  SourceClass
	LocalPath    string
	Filename     string
	SHA256       string // lowercase hex
	Size         int64
	DownloadedAt time.Time
	Systems      []string // e.g. "pyro", "rbd", "flip", "vellum", "sop"
	Description  string
}

// ParseStatus is the outcome of attempting to parse an archive already
// identified in the cache.
type ParseStatus string

const (
	ParsePending ParseStatus = "pending"
	ParseSuccess ParseStatus = "success"
	ParseError   ParseStatus = "error"
)

// HipFileRecord is the persisted, stable identity of a previously parsed
// archive, keyed by SHA256.
type HipFileRecord struct {
	ID          int64
	SHA256      string
	Filename    string
	SourceClass SourceClass
	SourceURL   string
	HoudiniVer  string
	Description string
	Systems     []string
	NodeCount   int
	ParsedAt    time.Time
	ParseStatus ParseStatus
	ParseError  string
}

// ParameterSnapshot is one observed (node_type, param_name, value) row
// extracted from a specific HIP file.
type ParameterSnapshot struct {
	ID         int64
	HipFileID  int64
	NodeType   string
	NodePath   string
	ParamName  string
	ParamValue string // canonical text encoding
	IsDefault  bool
	Expression string
}
