package variant

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing is the product-level price new variants start from.
type Pricing struct {
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
}

type Reconciler struct {
	NewID func() string
}

func NewReconciler() *Reconciler {
	return &Reconciler{NewID: uuid.NewString}
}

// Reconcile builds the variant list for the generated selections, carrying identity and
// seller-entered fields over from previous variants whose title is unchanged. Each previous
// variant is carried over at most once, so a repeated title never shares an id.
func (r *Reconciler) Reconcile(options []model.Option, selections []Selection, previous []model.Variant, base Pricing) []model.Variant {
	if len(selections) == 0 {
		return nil
	}

	byTitle := make(map[string]model.Variant, len(previous))
	for _, v := range previous {
		if _, dup := byTitle[v.Title]; !dup {
			byTitle[v.Title] = v
		}
	}

	price := base.Price
	if price.IsNegative() {
		price = decimal.Zero
	}

	out := make([]model.Variant, len(selections))
	defaultSeen := false
	for i, sel := range selections {
		title := Title(options, sel)
		selection := make(map[string]string, len(sel))
		for k, v := range sel {
			selection[k] = v
		}

		var v model.Variant
		if prev, ok := byTitle[title]; ok {
			delete(byTitle, title)
			v = model.Variant{
				ID:             prev.ID,
				Price:          prev.Price,
				CompareAtPrice: copyDecimal(prev.CompareAtPrice),
				Inventory:      prev.Inventory,
				SKU:            prev.SKU,
				Available:      prev.Available,
				IsDefault:      prev.IsDefault && !defaultSeen,
			}
		} else {
			v = model.Variant{
				ID:             r.newID(),
				Price:          price,
				CompareAtPrice: copyDecimal(base.CompareAtPrice),
				Available:      true,
			}
		}
		if v.IsDefault {
			defaultSeen = true
		}

		v.Title = title
		v.Selection = selection
		v.Position = i
		out[i] = v
	}

	if !defaultSeen {
		out[0].IsDefault = true
	}
	return out
}

func (r *Reconciler) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
