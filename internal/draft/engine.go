// Package draft applies seller edits to an immutable product snapshot and re-derives
// variants, inventory and the size chart after every edit.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/sizing"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidEdit     = errors.New("invalid edit")
	ErrVariantNotFound = errors.New("variant not found")
)

type Engine struct {
	reconciler *variant.Reconciler
}

func NewEngine(r *variant.Reconciler) *Engine {
	if r == nil {
		r = variant.NewReconciler()
	}
	return &Engine{reconciler: r}
}

// Apply returns a new snapshot with edits applied in order. p is never modified.
// The first failing edit aborts the whole batch.
func (e *Engine) Apply(p model.Product, edits ...Edit) (model.Product, error) {
	next := p.Clone()
	for i, ed := range edits {
		if err := e.apply(&next, ed); err != nil {
			return p, fmt.Errorf("edit %d (%s): %w", i, ed.Type, err)
		}
	}
	return next, nil
}

// Normalize runs the full derivation pipeline once, e.g. on a draft seeded from the catalog.
func (e *Engine) Normalize(p model.Product) (model.Product, error) {
	next := p.Clone()
	if err := variant.ValidateOptions(next.Options); err != nil {
		return p, invalid(err)
	}
	e.derive(&next)
	if err := syncSizing(&next, false); err != nil {
		return p, invalid(err)
	}
	return next, nil
}

func (e *Engine) apply(p *model.Product, ed Edit) error {
	switch ed.Type {
	case SetTitle:
		p.Title = ed.Value
	case SetDescription:
		p.Description = ed.Value
	case SetProductType:
		p.ProductType = ed.Value

	case SetPrice:
		if err := checkPrice(ed.Price, ed.CompareAtPrice); err != nil {
			return err
		}
		p.Price = *ed.Price
		p.CompareAtPrice = ed.CompareAtPrice

	case SetOptions:
		if err := variant.ValidateOptions(ed.Options); err != nil {
			return invalid(err)
		}
		before := sizing.SizeValues(p.Options)
		p.Options = cloneOptions(ed.Options)
		e.derive(p)
		if !equalStrings(before, sizing.SizeValues(p.Options)) {
			if err := syncSizing(p, false); err != nil {
				return invalid(err)
			}
		}
		return nil

	case SetVariantPrice:
		v, err := findVariant(p, ed.VariantID)
		if err != nil {
			return err
		}
		if err := checkPrice(ed.Price, ed.CompareAtPrice); err != nil {
			return err
		}
		v.Price = *ed.Price
		v.CompareAtPrice = ed.CompareAtPrice

	case SetVariantQuantity:
		v, err := findVariant(p, ed.VariantID)
		if err != nil {
			return err
		}
		if ed.Quantity == nil || *ed.Quantity < 0 {
			return invalidf("quantity must be a non-negative integer")
		}
		v.Inventory.Quantity = *ed.Quantity

	case SetVariantSKU:
		v, err := findVariant(p, ed.VariantID)
		if err != nil {
			return err
		}
		v.SKU = strings.TrimSpace(ed.Value)

	case SetVariantAvailable:
		v, err := findVariant(p, ed.VariantID)
		if err != nil {
			return err
		}
		if ed.Available == nil {
			return invalidf("available flag is required")
		}
		v.Available = *ed.Available

	case SetDefaultVariant:
		if _, err := findVariant(p, ed.VariantID); err != nil {
			return err
		}
		for i := range p.Variants {
			p.Variants[i].IsDefault = p.Variants[i].ID == ed.VariantID
		}

	case SetSingleQuantity:
		if ed.Quantity == nil || *ed.Quantity < 0 {
			return invalidf("quantity must be a non-negative integer")
		}
		p.SingleQuantity = *ed.Quantity

	case SetTags:
		p.Tags = append([]string(nil), ed.Values...)
	case SetImages:
		p.Images = append([]string(nil), ed.Values...)
	case AddImage:
		if strings.TrimSpace(ed.Value) == "" {
			return invalidf("image url is required")
		}
		p.Images = append(p.Images, ed.Value)

	case SetSizingCategory:
		return setCategory(p, ed.Value)

	case SetSizeFit:
		guide(p).SizeFit = ed.Value
	case SetMeasurementUnit:
		unit := model.MeasurementUnit(ed.Value)
		if !unit.Valid() {
			return invalidf("measurement unit %q is not one of inch, cm", ed.Value)
		}
		guide(p).MeasurementUnit = unit

	case SetMeasurement:
		return setMeasurement(p, ed)

	default:
		return invalidf("unknown edit type %q", ed.Type)
	}

	e.derive(p)
	return nil
}

// derive regenerates the matrix, reconciles it against the current variants and re-aggregates stock.
func (e *Engine) derive(p *model.Product) {
	selections := variant.Generate(p.Options)
	p.Variants = e.reconciler.Reconcile(p.Options, selections, p.Variants, variant.Pricing{
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
	})
	if len(p.Variants) > 0 {
		p.Inventory = variant.Aggregate(p.Variants)
		return
	}
	p.Inventory = model.InventoryAggregate{Quantity: p.SingleQuantity, InStock: p.SingleQuantity > 0}
}

func syncSizing(p *model.Product, rebuild bool) error {
	g := p.SizingGuide
	if g == nil || g.Category == "" {
		return nil
	}
	sizes := sizing.SizeValues(p.Options)
	var (
		chart model.SizeChart
		err   error
	)
	if rebuild {
		chart, err = sizing.Rebuild(g.Category, sizes)
	} else {
		chart, err = sizing.Sync(g.Category, sizes, g.SizeChart)
	}
	if err != nil {
		return err
	}
	g.SizeChart = chart
	return nil
}

func setCategory(p *model.Product, name string) error {
	g := guide(p)
	if strings.TrimSpace(name) == "" {
		g.Category = ""
		g.SizeChart = nil
		return nil
	}
	c, ok := sizing.Lookup(name)
	if !ok {
		return invalid(fmt.Errorf("%w: %q", sizing.ErrUnknownCategory, name))
	}
	changed := g.Category != c.Name
	g.Category = c.Name
	if err := syncSizing(p, changed); err != nil {
		return invalid(err)
	}
	return nil
}

func setMeasurement(p *model.Product, ed Edit) error {
	g := p.SizingGuide
	if g == nil || g.Category == "" {
		return invalidf("select a sizing guide category before entering measurements")
	}
	c, _ := sizing.Lookup(g.Category)
	if !containsString(c.Columns, ed.Column) {
		return invalidf("column %q is not part of the %s chart", ed.Column, c.Name)
	}
	row, ok := g.SizeChart[ed.Size]
	if !ok {
		return invalidf("size %q has no chart row", ed.Size)
	}
	if ed.Measurement == nil || (*ed.Measurement < 0 && *ed.Measurement != model.Unmeasured) {
		return invalidf("measurement must be non-negative")
	}
	row[ed.Column] = *ed.Measurement
	return nil
}

func guide(p *model.Product) *model.SizingGuide {
	if p.SizingGuide == nil {
		p.SizingGuide = &model.SizingGuide{MeasurementUnit: model.UnitCM}
	}
	return p.SizingGuide
}

func findVariant(p *model.Product, id string) (*model.Variant, error) {
	i := p.VariantByID(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidEdit, ErrVariantNotFound, id)
	}
	return &p.Variants[i], nil
}

func checkPrice(price, compareAt *decimal.Decimal) error {
	if price == nil || price.IsNegative() {
		return invalidf("price must be a non-negative number")
	}
	if compareAt != nil && compareAt.LessThan(*price) {
		return invalidf("compare-at price must not be below price")
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEdit, fmt.Sprintf(format, args...))
}

func cloneOptions(in []model.Option) []model.Option {
	out := make([]model.Option, len(in))
	for i, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		o.Values = append([]string(nil), o.Values...)
		out[i] = o
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
