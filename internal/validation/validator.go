// Package validation runs the pre-publish checks over a product draft.
package validation

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/sizing"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
)

const (
	CodeTitleRequired          = "title_required"
	CodeDescriptionRequired    = "description_required"
	CodeProductTypeRequired    = "product_type_required"
	CodePriceRequired          = "price_required"
	CodeCompareAtPriceInvalid  = "compare_at_price_invalid"
	CodeImageRequired          = "image_required"
	CodeGenderTagRequired      = "gender_tag_required"
	CodeGenderTagMultiple      = "gender_tag_multiple"
	CodeSizingCategoryRequired = "sizing_category_required"
	CodeSizeFitRequired        = "size_fit_required"
	CodeSizeRowMissing         = "size_row_missing"
	CodeSizeRowIncomplete      = "size_row_incomplete"
	CodeStockZero              = "stock_zero"
)

var GenderTags = []string{"male", "female", "unisex"}

// Issue is one user-correctable violation. Code doubles as the i18n message id.
type Issue struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Args    map[string]string `json:"args,omitempty"`
}

type Validator struct {
	// StrictGenderTag rejects drafts carrying more than one gender tag.
	StrictGenderTag bool
	// RequireFullMeasurements blocks publication while any required chart cell is unmeasured.
	RequireFullMeasurements bool
}

func New() *Validator {
	return &Validator{RequireFullMeasurements: true}
}

// Validate runs every rule and returns all violations in rule order. An empty result means publishable.
func (v *Validator) Validate(p model.Product) []Issue {
	var issues []Issue
	add := func(code, msg string, args map[string]string) {
		issues = append(issues, Issue{Code: code, Message: msg, Args: args})
	}

	if strings.TrimSpace(p.Title) == "" {
		add(CodeTitleRequired, "Title is required", nil)
	}
	if strings.TrimSpace(p.Description) == "" {
		add(CodeDescriptionRequired, "Description is required", nil)
	}
	if strings.TrimSpace(p.ProductType) == "" {
		add(CodeProductTypeRequired, "Product type is required", nil)
	}
	if !p.Price.IsPositive() {
		add(CodePriceRequired, "Price must be greater than zero", nil)
	}
	if p.CompareAtPrice != nil && p.CompareAtPrice.LessThan(p.Price) {
		add(CodeCompareAtPriceInvalid, "Compare-at price must be greater than or equal to price", nil)
	}
	if len(p.Images) == 0 {
		add(CodeImageRequired, "At least one image is required", nil)
	}

	switch n := countGenderTags(p.Tags); {
	case n == 0:
		add(CodeGenderTagRequired, "A gender tag (male, female or unisex) is required", nil)
	case n > 1 && v.StrictGenderTag:
		add(CodeGenderTagMultiple, "Only one gender tag (male, female or unisex) is allowed", nil)
	}

	if sizing.IsApparel(p.ProductType) {
		issues = append(issues, v.validateSizing(p)...)
	}

	// Recomputed from the variants; the stored aggregate may be stale.
	if len(p.Variants) > 0 && variant.Aggregate(p.Variants).Quantity <= 0 {
		add(CodeStockZero, "Total stock for all variants cannot be zero", nil)
	}
	return issues
}

func (v *Validator) validateSizing(p model.Product) []Issue {
	var issues []Issue
	guide := p.SizingGuide
	if guide == nil {
		guide = &model.SizingGuide{}
	}

	category, known := sizing.Lookup(guide.Category)
	if !known {
		issues = append(issues, Issue{Code: CodeSizingCategoryRequired, Message: "sizing guide type is required"})
	}
	if strings.TrimSpace(guide.SizeFit) == "" {
		issues = append(issues, Issue{Code: CodeSizeFitRequired, Message: "Sizing & Fit Details are required"})
	}
	if !known {
		return issues
	}

	for _, size := range sizing.SizeValues(p.Options) {
		row, ok := guide.SizeChart[size]
		if !ok {
			issues = append(issues, Issue{
				Code:    CodeSizeRowMissing,
				Message: fmt.Sprintf("Size chart is missing measurements for size %s", size),
				Args:    map[string]string{"Size": size},
			})
			continue
		}
		if !v.RequireFullMeasurements {
			continue
		}
		if missing := sizing.MissingColumns(category, row); len(missing) > 0 {
			cols := strings.Join(missing, ", ")
			issues = append(issues, Issue{
				Code:    CodeSizeRowIncomplete,
				Message: fmt.Sprintf("Size chart for size %s is missing measurements: %s", size, cols),
				Args:    map[string]string{"Size": size, "Columns": cols},
			})
		}
	}
	return issues
}

func countGenderTags(tags []string) int {
	n := 0
	for _, t := range tags {
		for _, g := range GenderTags {
			if strings.EqualFold(strings.TrimSpace(t), g) {
				n++
			}
		}
	}
	return n
}

// Messages flattens issues into their default messages.
func Messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}
