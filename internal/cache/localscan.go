package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/houdini-kb/hipindex/internal/model"
	"github.com/karrick/godirwalk"
)

var systemHints = map[string][]string{
	"pyro":   {"pyro", "fire", "smoke"},
	"rbd":    {"rbd", "fracture", "bullet"},
	"flip":   {"flip", "fluid", "ocean"},
	"vellum": {"vellum", "cloth", "hair"},
}

func inferSystems(path string) []string {
	lower := strings.ToLower(path)
	var systems []string
	for system, needles := range systemHints {
		for _, n := range needles {
			if strings.Contains(lower, n) {
				systems = append(systems, system)
				break
			}
		}
	}
	return systems
}

// scanLocal walks roots looking for .hip/.hipnc files, the same
// godirwalk.Walk traversal the teacher's pkg/archive/archive.go
// populateIndex uses for large directory trees, here reused for the
// Houdini install scan instead of an archive source tree.
func scanLocal(roots []string) ([]model.CacheEntry, error) {
	var entries []model.CacheEntry

	var expanded []string
	for _, root := range roots {
		matches, err := filepath.Glob(root)
		if err != nil || len(matches) == 0 {
			expanded = append(expanded, root)
			continue
		}
		expanded = append(expanded, matches...)
	}

	for _, root := range expanded {
		if _, err := os.Stat(root); err != nil {
			continue // candidate root not present on this machine
		}

		err := godirwalk.Walk(root, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					return nil
				}
				lower := strings.ToLower(path)
				if !strings.HasSuffix(lower, ".hip") && !strings.HasSuffix(lower, ".hipnc") {
					return nil
				}

				sum, size, err := sha256File(path)
				if err != nil {
					return nil //nolint:nilerr // unreadable file, skip it
				}

				entries = append(entries, model.CacheEntry{
					SourceID:    path,
					SourceClass: model.SourceLocalInstall,
					LocalPath:   path,
					Filename:    filenameOf(path),
					SHA256:      sum,
					Size:        size,
					Systems:     inferSystems(path),
				})
				return nil
			},
			ErrorCallback: func(_ string, _ error) godirwalk.ErrorAction {
				return godirwalk.SkipNode
			},
		})
		if err != nil {
			return entries, err
		}
	}

	return entries, nil
}

func sha256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func filenameOf(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
