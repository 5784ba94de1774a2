package remote

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// FetchResult holds whatever pages were collected. Partial is set when a page failed or
// the page cap was reached before the catalog ran out of items.
type FetchResult struct {
	Items   []model.Product
	Pages   int
	Partial bool
	Err     error
}

// FetchAllProducts walks the catalog page by page, stopping at the first empty page, the first
// failed page or after maxPages requests. Items gathered before a failure are kept.
func FetchAllProducts(ctx context.Context, c Client, pageSize, maxPages int) FetchResult {
	var out FetchResult
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			out.Partial = true
			out.Err = ctx.Err()
			return out
		}
		res := c.ListProducts(ctx, page, pageSize)
		out.Pages++
		if !res.OK {
			out.Partial = true
			out.Err = res.Err()
			return out
		}
		if len(res.Body.Items) == 0 {
			return out
		}
		out.Items = append(out.Items, res.Body.Items...)
		if res.Body.Total > 0 && len(out.Items) >= res.Body.Total {
			return out
		}
	}
	out.Partial = true
	return out
}
