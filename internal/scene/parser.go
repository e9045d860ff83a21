// Package scene implements the Scene Parser: it turns the text entries
// surfaced by the text filter into a typed Scene. The parser is
// intentionally lenient and linear (one line of lookahead at most)
// because the underlying stanza grammar is undocumented and varies
// across Houdini releases. Malformed stanzas are dropped; a partial
// Scene is always returned, never an error.
package scene

import (
	"regexp"
	"strings"

	"github.com/houdini-kb/hipindex/internal/cpio"
	"github.com/houdini-kb/hipindex/internal/model"
)

var (
	typeRe  = regexp.MustCompile(`^type\s*=\s*(\S+)`)
	nodeRe  = regexp.MustCompile(`^name\s*=?\s*(\S+)`)
	flagsRe = regexp.MustCompile(`^flags\s*=\s*(.+)`)

	parmNameRe   = regexp.MustCompile(`^name\s+(\S+)`)
	parmValueRe  = regexp.MustCompile(`^(?:default)?\s*value\s+(.+)`)
	expressionRe = regexp.MustCompile(`^expression\s+(.+)`)
)

type parserState int

const (
	stateTop parserState = iota
	stateInParm
)

// Parse consumes the ordered text entries from one archive and returns a
// Scene. It never fails: intra-scene anomalies are silently dropped.
func Parse(entries []cpio.Entry) *model.Scene {
	sc := model.NewScene()

	var headerText strings.Builder
	for _, e := range entries {
		if isHeaderEntry(e.Path) {
			headerText.Write(e.Data)
			headerText.WriteByte('\n')
		}
	}
	sc.HipVersion, sc.SaveTime, sc.Metadata = parseHeader(headerText.String())

	for _, e := range entries {
		if isHeaderEntry(e.Path) {
			continue
		}
		parseEntry(sc, e)
	}

	if sc.HipVersion == "" {
		for _, e := range entries {
			if isHeaderEntry(e.Path) {
				continue
			}
			if m := hipVersionRe.FindStringSubmatch(string(e.Data)); m != nil {
				sc.HipVersion = m[1]
				break
			}
		}
	}

	return sc
}

func basePathFor(filename string) string {
	p := strings.ReplaceAll(filename, `\`, "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return "/" + p
}

// parseEntry runs the TOP/IN_PARM state machine over one text entry's
// lines, appending any Nodes and Connections it recognizes to sc.
func parseEntry(sc *model.Scene, e cpio.Entry) {
	basePath := basePathFor(e.Path)

	state := stateTop
	var current *model.Node
	var parmDepth int
	var parm model.Parameter

	flush := func() {
		if current != nil && current.Type != "" {
			sc.AddNode(*current)
		}
		current = nil
	}

	finalizeParm := func() {
		if current != nil && parm.Name != "" {
			current.Parameters = append(current.Parameters, parm)
		}
		parm = model.Parameter{IsDefault: true}
	}

	for _, rawLine := range strings.Split(string(e.Data), "\n") {
		line := strings.TrimRight(rawLine, "\r")
		trimmed := strings.TrimSpace(line)

		switch state {
		case stateTop:
			if m := typeRe.FindStringSubmatch(trimmed); m != nil {
				flush()
				current = &model.Node{
					Type:     m[1],
					Path:     basePath,
					Category: inferCategory(m[1], e.Path),
					Flags:    make(map[string]bool),
				}
				continue
			}

			if current == nil {
				// No active node yet; still honor connection lines, which
				// stand on their own.
				if conn, ok := parseConnectionLine(basePath, trimmed); ok {
					sc.Connections = append(sc.Connections, conn)
				}
				continue
			}

			if m := nodeRe.FindStringSubmatch(trimmed); m != nil {
				current.Name = m[1]
				current.Path = basePath + "/" + m[1]
				continue
			}

			if m := flagsRe.FindStringSubmatch(trimmed); m != nil {
				parseFlags(current, m[1])
				continue
			}

			if trimmed == "parm {" || trimmed == "parm\t{" {
				state = stateInParm
				parmDepth = 1
				parm = model.Parameter{IsDefault: true}
				continue
			}

			if strings.HasPrefix(trimmed, "wire ") || strings.HasPrefix(trimmed, "input ") {
				if conn, ok := parseConnectionLine(basePath, trimmed); ok {
					sc.Connections = append(sc.Connections, conn)
				}
				continue
			}

		case stateInParm:
			parmDepth += strings.Count(trimmed, "{")
			parmDepth -= strings.Count(trimmed, "}")

			if parmDepth <= 0 {
				finalizeParm()
				state = stateTop
				continue
			}

			if m := parmNameRe.FindStringSubmatch(trimmed); m != nil {
				parm.Name = m[1]
				continue
			}

			if m := parmValueRe.FindStringSubmatch(trimmed); m != nil {
				parm.Value = coerceValue(strings.TrimSpace(m[1]))
				continue
			}

			if strings.Contains(trimmed, "parmdef") || strings.Contains(trimmed, "default {") || strings.Contains(trimmed, "keyframe {") {
				parm.IsDefault = false
				continue
			}

			if m := expressionRe.FindStringSubmatch(trimmed); m != nil {
				parm.Expression = strings.TrimSpace(m[1])
				parm.IsDefault = false
				continue
			}
		}
	}

	flush()
}

func parseFlags(n *model.Node, rest string) {
	for _, tok := range strings.Fields(rest) {
		if key, val, ok := strings.Cut(tok, "="); ok {
			n.Flags[key] = val == "1" || val == "on" || val == "true"
			continue
		}
		n.Flags[tok] = true
	}
}
