package survey

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Report ordering is reader-facing, so names sort the way a directory
// would list them rather than by code point.
var nameCollator = collate.New(language.English, collate.Loose)

// CompareNames orders two display names collation-aware.
func CompareNames(a, b string) int {
	return nameCollator.CompareString(a, b)
}

// SortFeatures orders features by name, keeping input order for ties.
func SortFeatures(features []Feature) {
	sort.SliceStable(features, func(i, j int) bool {
		return CompareNames(features[i].Properties.Name, features[j].Properties.Name) < 0
	})
}

// SortCategories orders category names in place.
func SortCategories(categories []string) {
	sort.SliceStable(categories, func(i, j int) bool {
		return CompareNames(categories[i], categories[j]) < 0
	})
}
