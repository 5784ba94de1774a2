package sizing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// SizeOptionName is the option whose values drive the size chart rows.
const SizeOptionName = "Size"

var ErrUnknownCategory = errors.New("unknown sizing guide category")

// SizeValues returns the values of the Size option, or nil when the product has none.
func SizeValues(options []model.Option) []string {
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o.Name), SizeOptionName) {
			return append([]string(nil), o.Values...)
		}
	}
	return nil
}

// UnionSizes merges size lists keeping first-seen order, e.g. [S M] + [M L] = [S M L].
func UnionSizes(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Sync adds a row for every size missing from chart and fills any missing column with
// model.Unmeasured. Existing cells are never overwritten and rows for sizes that are no
// longer offered are kept, so re-adding a size restores its measurements.
func Sync(category string, sizes []string, chart model.SizeChart) (model.SizeChart, error) {
	c, ok := Lookup(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	out := chart.Clone()
	if out == nil {
		out = make(model.SizeChart, len(sizes))
	}
	for _, size := range sizes {
		row, exists := out[size]
		if !exists {
			row = make(map[string]float64, len(c.Columns))
			out[size] = row
		}
		for _, col := range c.Columns {
			if _, has := row[col]; !has {
				row[col] = model.Unmeasured
			}
		}
	}
	return out, nil
}

// Rebuild discards chart contents and lays out fresh rows for a newly selected category.
func Rebuild(category string, sizes []string) (model.SizeChart, error) {
	return Sync(category, sizes, nil)
}

// Prune drops rows for sizes that are no longer offered.
func Prune(chart model.SizeChart, sizes []string) model.SizeChart {
	keep := make(map[string]struct{}, len(sizes))
	for _, s := range sizes {
		keep[s] = struct{}{}
	}
	out := make(model.SizeChart, len(sizes))
	for size, row := range chart.Clone() {
		if _, ok := keep[size]; ok {
			out[size] = row
		}
	}
	return out
}

// MissingColumns lists the category columns of row that are absent or unmeasured, in column order.
func MissingColumns(c Category, row map[string]float64) []string {
	var missing []string
	for _, col := range c.Columns {
		v, ok := row[col]
		if !ok || v == model.Unmeasured {
			missing = append(missing, col)
		}
	}
	return missing
}
