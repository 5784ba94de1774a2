package variant

import "github.com/fekuna/omnipos-catalog-service/internal/model"

// Aggregate rolls per-variant stock into the product-level total.
func Aggregate(variants []model.Variant) model.InventoryAggregate {
	total := 0
	for _, v := range variants {
		total += v.Inventory.Quantity
	}
	return model.InventoryAggregate{Quantity: total, InStock: total > 0}
}
