package scene

import (
	"strings"

	"github.com/houdini-kb/hipindex/internal/model"
)

var dopTypeHints = []string{"pyro", "flip", "rbd", "vellum", "solver", "gas", "bullet"}

type pathHint struct {
	needle   string
	category model.Category
}

var pathHints = []pathHint{
	{"/dop/", model.CategoryDOP},
	{"dopnet", model.CategoryDOP},
	{"/sop/", model.CategorySOP},
	{"/vop/", model.CategoryVOP},
	{"/chop/", model.CategoryCHOP},
	{"/cop/", model.CategoryCOP},
	{"/rop/", model.CategoryROP},
	{"/lop/", model.CategoryLOP},
	{"/top/", model.CategoryTOP},
	{"/obj/", model.CategoryOBJ},
}

// inferCategory chooses a Node's Category from its type identifier and
// the filename of the entry it was extracted from, per spec.md 4.3.1:
// first a type-name hint, then a path hint, defaulting to SOP.
func inferCategory(nodeType, filename string) model.Category {
	lowerType := strings.ToLower(nodeType)
	for _, hint := range dopTypeHints {
		if strings.Contains(lowerType, hint) {
			return model.CategoryDOP
		}
	}

	lowerFile := strings.ToLower(filename)
	for _, hint := range pathHints {
		if strings.Contains(lowerFile, hint.needle) {
			return hint.category
		}
	}

	return model.CategorySOP
}
