// Package sizing keeps a product's measurement chart aligned with its Size option.
package sizing

import (
	"sort"
	"strings"
)

// Category is a sizing-guide type with a fixed set of measurement columns.
type Category struct {
	Name    string
	Label   string
	Columns []string
}

var categories = map[string]Category{
	"tops": {
		Name:    "tops",
		Label:   "Tops",
		Columns: []string{"chest", "shoulder", "sleeve", "length"},
	},
	"bottoms": {
		Name:    "bottoms",
		Label:   "Bottoms",
		Columns: []string{"waist", "hip", "inseam", "length"},
	},
	"dresses": {
		Name:    "dresses",
		Label:   "Dresses",
		Columns: []string{"bust", "waist", "hip", "length"},
	},
	"outerwear": {
		Name:    "outerwear",
		Label:   "Outerwear",
		Columns: []string{"chest", "shoulder", "sleeve", "length"},
	},
	"footwear": {
		Name:    "footwear",
		Label:   "Footwear",
		Columns: []string{"foot_length", "foot_width"},
	},
}

// apparelTypes maps a product type to the sizing category suggested for it.
var apparelTypes = map[string]string{
	"t-shirt":  "tops",
	"shirt":    "tops",
	"blouse":   "tops",
	"top":      "tops",
	"sweater":  "tops",
	"hoodie":   "tops",
	"pants":    "bottoms",
	"jeans":    "bottoms",
	"shorts":   "bottoms",
	"skirt":    "bottoms",
	"dress":    "dresses",
	"jumpsuit": "dresses",
	"jacket":   "outerwear",
	"coat":     "outerwear",
	"blazer":   "outerwear",
	"shoes":    "footwear",
	"sneakers": "footwear",
	"boots":    "footwear",
	"sandals":  "footwear",
}

func Lookup(name string) (Category, bool) {
	c, ok := categories[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Categories returns every category sorted by name.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsApparel reports whether products of this type must carry a sizing guide.
func IsApparel(productType string) bool {
	_, ok := apparelTypes[normalizeType(productType)]
	return ok
}

// SuggestedCategory returns the default sizing category for a product type.
func SuggestedCategory(productType string) (string, bool) {
	c, ok := apparelTypes[normalizeType(productType)]
	return c, ok
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
