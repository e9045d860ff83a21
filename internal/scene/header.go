package scene

import "regexp"

var (
	hipVersionRe = regexp.MustCompile(`(?:houdini_version|_HIP_SAVEVERSION)\s*=?\s*["']?(\d+\.\d+(?:\.\d+)?)`)
	saveTimeRe   = regexp.MustCompile(`(?:_HIP_SAVETIME|hip_savetime)\s*=?\s*["']?([^"'\n]+)`)
	metadataRe   = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(?:"([^"]*)"|(\S+))\s*$`)
)

// isHeaderEntry reports whether filename is one of the conventional
// header-carrying member names spec.md 4.3 names.
func isHeaderEntry(filename string) bool {
	switch filename {
	case ".hip", "Houdini", ".OPfallbacks", "houdini.hip":
		return true
	}
	return len(filename) > 4 && filename[len(filename)-4:] == ".def"
}

// parseHeader extracts hipVersion, saveTime, and freeform metadata from
// the concatenated contents of header-carrying entries.
func parseHeader(text string) (hipVersion, saveTime string, metadata map[string]string) {
	metadata = make(map[string]string)

	if m := hipVersionRe.FindStringSubmatch(text); m != nil {
		hipVersion = m[1]
	}
	if m := saveTimeRe.FindStringSubmatch(text); m != nil {
		saveTime = m[1]
	}

	for _, m := range metadataRe.FindAllStringSubmatch(text, -1) {
		key := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		metadata[key] = value // last write wins
	}

	return hipVersion, saveTime, metadata
}
