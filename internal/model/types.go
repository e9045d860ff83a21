// Package model holds the data types shared by every stage of the HIP
// ingestion pipeline: the archive reader, the scene parser, the cache
// manager, and the store.
package model

import (
	"strings"

	"github.com/tidwall/btree"
)

// Category is the Houdini context a Node lives in.
type Category string

const (
	CategoryOBJ  Category = "OBJ"
	CategorySOP  Category = "SOP"
	CategoryDOP  Category = "DOP"
	CategoryVOP  Category = "VOP"
	CategoryCHOP Category = "CHOP"
	CategoryCOP  Category = "COP"
	CategoryROP  Category = "ROP"
	CategoryLOP  Category = "LOP"
	CategoryTOP  Category = "TOP"
)

// Valid reports whether c is one of the closed set of Houdini categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryOBJ, CategorySOP, CategoryDOP, CategoryVOP, CategoryCHOP, CategoryCOP, CategoryROP, CategoryLOP, CategoryTOP:
		return true
	}
	return false
}

// ValueKind tags which field of Parameter.Value is populated.
type ValueKind string

const (
	ValueFloat    ValueKind = "float"
	ValueFloatSeq ValueKind = "float_seq"
	ValueText     ValueKind = "text"
)

// Value is the tagged union of the three shapes a Parameter's raw stanza
// text can coerce to: a scalar float, an ordered sequence of floats, or
// opaque text (including expressions that never reduced to a number).
type Value struct {
	Kind  ValueKind
	Float float64
	Seq   []float64
	Text  string
}

// Parameter is one child of a Node, extracted from a `parm { ... }` stanza.
type Parameter struct {
	Name       string
	Value      Value
	IsDefault  bool
	Expression string // empty when absent
	Channel    string // optional channel reference, empty when absent
}

// HasExpression reports whether the parameter carries expression text.
func (p *Parameter) HasExpression() bool {
	return p.Expression != ""
}

// Node is a single Houdini node extracted from a scene entry.
//
// Nodes are kept as a flat, path-keyed sequence rather than a pointer
// tree: connections may form cycles in principle, and a flat sequence
// makes extraction a pure append over the store.
type Node struct {
	Path       string
	Type       string // may carry a "::version" suffix
	Category   Category
	Name       string
	Parameters []Parameter
	Flags      map[string]bool
}

// FlagEnabled reports the boolean value of a flag, defaulting to false
// when the flag was never set.
func (n *Node) FlagEnabled(name string) bool {
	return n.Flags[name]
}

// Connection is a directed edge between two node inputs/outputs.
type Connection struct {
	FromPath   string
	FromOutput int
	ToPath     string
	ToInput    int
}

// Scene is the result of parsing one archive's text entries.
type Scene struct {
	HipVersion  string
	SaveTime    string
	Metadata    map[string]string
	Nodes       []Node
	Connections []Connection

	index *btree.BTree // lazily built path index over Nodes
}

func nodeLess(a, b interface{}) bool {
	return a.(*Node).Path < b.(*Node).Path
}

// NewScene returns an empty Scene ready for incremental population by the
// parser.
func NewScene() *Scene {
	return &Scene{
		Metadata: make(map[string]string),
	}
}

// AddNode appends a fully-formed Node to the scene in document order.
func (s *Scene) AddNode(n Node) {
	s.Nodes = append(s.Nodes, n)
	s.index = nil // invalidate; rebuilt lazily by NodeByPath
}

func (s *Scene) ensureIndex() {
	if s.index != nil {
		return
	}
	idx := btree.New(nodeLess)
	for i := range s.Nodes {
		idx.Set(&s.Nodes[i])
	}
	s.index = idx
}

// NodeByPath returns the node at the given path, or nil if absent. Builds
// a one-time path index over the node slice the same way the teacher's
// ClipArchiveMetadata indexes its flat node set, so repeated lookups
// during extraction don't degrade to O(n^2).
func (s *Scene) NodeByPath(path string) *Node {
	s.ensureIndex()
	item := s.index.Get(&Node{Path: path})
	if item == nil {
		return nil
	}
	return item.(*Node)
}

// ChildrenOf returns the immediate child nodes of the given path, mirroring
// the teacher's ListDirectory prefix-scan: ascend from path+"/\x00" and stop
// once the prefix no longer matches.
func (s *Scene) ChildrenOf(path string) []*Node {
	s.ensureIndex()

	prefix := path
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var children []*Node
	pivot := &Node{Path: prefix + "\x00"}
	pathLen := len(prefix)

	s.index.Ascend(pivot, func(a interface{}) bool {
		n := a.(*Node)
		if len(n.Path) < pathLen || n.Path[:pathLen] != prefix {
			return false // past the prefix range; nothing later can match
		}
		rest := n.Path[pathLen:]
		if strings.Contains(rest, "/") {
			return true // grandchild, not immediate
		}
		children = append(children, n)
		return true
	})

	return children
}
