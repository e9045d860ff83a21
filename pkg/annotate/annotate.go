// Package annotate defines the boundary between the HIP ingestion core
// and the LLM-driven annotation layer. The core calls nothing in this
// package; it only produces the store.ParamStats rows an Annotator
// consumes. Implementations (HTML doc crawling, content-library
// scraping, vector-embedding generation) live outside this module.
package annotate

import "github.com/houdini-kb/hipindex/internal/store"

// Annotator consumes parameter-usage aggregates produced by the store
// and turns them into human- or LLM-facing documentation. No
// implementation lives in this repository.
type Annotator interface {
	Annotate(nodeType string, stats []store.ParamStats) error
}
