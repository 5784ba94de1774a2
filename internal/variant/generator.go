// Package variant turns an option set into a reconciled list of sellable variants.
package variant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// TitleSeparator joins selected values into a variant title.
const TitleSeparator = " / "

var ErrInvalidOptions = errors.New("invalid options")

// Selection maps option name to the single value chosen for that option.
type Selection map[string]string

// ValidateOptions rejects option sets the generator cannot turn into unique titles.
func ValidateOptions(options []model.Option) error {
	seen := make(map[string]struct{}, len(options))
	for i, o := range options {
		name := strings.TrimSpace(o.Name)
		if name == "" {
			return fmt.Errorf("%w: option %d has no name", ErrInvalidOptions, i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidOptions, name)
		}
		seen[key] = struct{}{}

		values := make(map[string]struct{}, len(o.Values))
		for _, v := range o.Values {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: option %q has an empty value", ErrInvalidOptions, name)
			}
			// A separator at either edge would join with the neighbouring separator.
			if strings.Contains(" "+v+" ", TitleSeparator) {
				return fmt.Errorf("%w: option %q value %q contains %q", ErrInvalidOptions, name, v, strings.TrimSpace(TitleSeparator))
			}
			if _, dup := values[v]; dup {
				return fmt.Errorf("%w: option %q repeats value %q", ErrInvalidOptions, name, v)
			}
			values[v] = struct{}{}
		}
	}
	return nil
}

// Generate returns the cartesian product of option values, depth-first in declaration order.
// Options without values contribute no dimension. Values within an option must be unique.
func Generate(options []model.Option) []Selection {
	active := make([]model.Option, 0, len(options))
	for _, o := range options {
		if len(o.Values) > 0 {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return nil
	}

	total := 1
	for _, o := range active {
		total *= len(o.Values)
	}
	out := make([]Selection, 0, total)

	current := make([]string, len(active))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(active) {
			sel := make(Selection, len(active))
			for i, o := range active {
				sel[o.Name] = current[i]
			}
			out = append(out, sel)
			return
		}
		for _, v := range active[depth].Values {
			current[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)
	return out
}

// Title joins the selected values in option declaration order.
func Title(options []model.Option, sel map[string]string) string {
	parts := make([]string, 0, len(sel))
	for _, o := range options {
		if v, ok := sel[o.Name]; ok && len(o.Values) > 0 {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, TitleSeparator)
}
