package scene

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/houdini-kb/hipindex/internal/model"
)

var (
	wireRe  = regexp.MustCompile(`^wire\s+(\S+)\s+(\d+)\s+(\S+)\s+(\d+)`)
	inputRe = regexp.MustCompile(`^input\s+(\d+)\s+(\S+)\s+(\d+)`)
)

// resolveRef joins a (possibly relative) node reference against basePath,
// per spec.md 4.3.2: absolute references are kept as-is.
func resolveRef(basePath, ref string) string {
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	return basePath + "/" + ref
}

// parseConnectionLine recognizes the two connection line forms and
// returns the Connection it describes, or ok=false if line matches
// neither form.
func parseConnectionLine(basePath, line string) (model.Connection, bool) {
	if m := wireRe.FindStringSubmatch(line); m != nil {
		fromOut, err1 := strconv.Atoi(m[2])
		toIn, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil {
			return model.Connection{}, false
		}
		return model.Connection{
			FromPath:   resolveRef(basePath, m[1]),
			FromOutput: fromOut,
			ToPath:     resolveRef(basePath, m[3]),
			ToInput:    toIn,
		}, true
	}

	if m := inputRe.FindStringSubmatch(line); m != nil {
		toIn, err1 := strconv.Atoi(m[1])
		fromOut, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			return model.Connection{}, false
		}
		return model.Connection{
			FromPath:   resolveRef(basePath, m[2]),
			FromOutput: fromOut,
			ToPath:     basePath,
			ToInput:    toIn,
		}, true
	}

	return model.Connection{}, false
}
