package draft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/shopspring/decimal"
)

func newEngine() *Engine {
	n := 0
	return NewEngine(&variant.Reconciler{NewID: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}})
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func qty(n int) *int { return &n }

func measure(f float64) *float64 { return &f }

func mustApply(t *testing.T, e *Engine, p model.Product, edits ...Edit) model.Product {
	t.Helper()
	out, err := e.Apply(p, edits...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestApply_OptionsBuildMatrix(t *testing.T) {
	e := newEngine()
	p := mustApply(t, e, model.Product{},
		Edit{Type: SetPrice, Price: price(900)},
		Edit{Type: SetOptions, Options: []model.Option{
			{Name: "Color", Values: []string{"Black", "White"}},
			{Name: "Size", Values: []string{"S", "M"}},
		}},
	)

	want := []string{"Black / S", "Black / M", "White / S", "White / M"}
	if len(p.Variants) != len(want) {
		t.Fatalf("want %d variants, got %d", len(want), len(p.Variants))
	}
	for i, v := range p.Variants {
		if v.Title != want[i] || v.Position != i {
			t.Errorf("variant %d: got %q at %d", i, v.Title, v.Position)
		}
	}
	if !p.Variants[0].IsDefault {
		t.Fatal("Black / S should be default")
	}
	if p.Inventory.Quantity != 0 || p.Inventory.InStock {
		t.Fatalf("unexpected inventory %+v", p.Inventory)
	}
}

func TestApply_AddColorPreservesVariant(t *testing.T) {
	e := newEngine()
	p := mustApply(t, e, model.Product{},
		Edit{Type: SetPrice, Price: price(900)},
		Edit{Type: SetOptions, Options: []model.Option{
			{Name: "Color", Values: []string{"Black", "White"}},
			{Name: "Size", Values: []string{"S", "M"}},
		}},
	)
	blackS := p.Variants[0].ID
	p = mustApply(t, e, p,
		Edit{Type: SetVariantPrice, VariantID: blackS, Price: price(1000)},
		Edit{Type: SetVariantQuantity, VariantID: blackS, Quantity: qty(5)},
		Edit{Type: SetOptions, Options: []model.Option{
			{Name: "Color", Values: []string{"Black", "White", "Navy"}},
			{Name: "Size", Values: []string{"S", "M"}},
		}},
	)

	if len(p.Variants) != 6 {
		t.Fatalf("want 6 variants, got %d", len(p.Variants))
	}
	v := p.Variants[0]
	if v.ID != blackS || !v.Price.Equal(decimal.NewFromInt(1000)) || v.Inventory.Quantity != 5 {
		t.Fatalf("Black / S lost its data: %+v", v)
	}
	for _, nv := range p.Variants[4:] {
		if !nv.Price.Equal(decimal.NewFromInt(900)) || nv.Inventory.Quantity != 0 {
			t.Fatalf("new navy variant should use base price: %+v", nv)
		}
	}
	if p.Inventory.Quantity != 5 || !p.Inventory.InStock {
		t.Fatalf("aggregate not recomputed: %+v", p.Inventory)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	e := newEngine()
	base := mustApply(t, e, model.Product{}, Edit{Type: SetOptions, Options: []model.Option{{Name: "Size", Values: []string{"S"}}}})
	id := base.Variants[0].ID

	_ = mustApply(t, e, base, Edit{Type: SetVariantQuantity, VariantID: id, Quantity: qty(9)})
	if base.Variants[0].Inventory.Quantity != 0 {
		t.Fatal("input snapshot was mutated")
	}
}

func TestApply_FailedBatchReturnsOriginal(t *testing.T) {
	e := newEngine()
	p := model.Product{Title: "before"}
	out, err := e.Apply(p,
		Edit{Type: SetTitle, Value: "after"},
		Edit{Type: SetVariantQuantity, VariantID: "missing", Quantity: qty(1)},
	)
	if !errors.Is(err, ErrVariantNotFound) || !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("want ErrVariantNotFound, got %v", err)
	}
	if out.Title != "before" {
		t.Fatalf("want original snapshot, got %q", out.Title)
	}
}

func TestApply_RejectsMalformedInput(t *testing.T) {
	e := newEngine()
	tests := []Edit{
		{Type: "explode"},
		{Type: SetOptions, Options: []model.Option{{Name: "Size", Values: []string{"S", "S"}}}},
		{Type: SetPrice, Price: price(-1)},
		{Type: SetPrice, Price: price(10), CompareAtPrice: price(5)},
		{Type: SetSingleQuantity, Quantity: qty(-2)},
		{Type: SetMeasurementUnit, Value: "furlong"},
		{Type: SetSizingCategory, Value: "hats"},
		{Type: SetMeasurement, Size: "S", Column: "chest", Measurement: measure(30)},
	}
	for _, ed := range tests {
		if _, err := e.Apply(model.Product{}, ed); !errors.Is(err, ErrInvalidEdit) {
			t.Errorf("%s: want ErrInvalidEdit, got %v", ed.Type, err)
		}
	}
}

func TestApply_RejectsAmbiguousVariantTitles(t *testing.T) {
	e := newEngine()
	ambiguous := []model.Option{
		{Name: "Color", Values: []string{"Black", "Black / S"}},
		{Name: "Size", Values: []string{"S / M", "M"}},
	}
	base := mustApply(t, e, model.Product{}, Edit{Type: SetOptions, Options: colorSizeOptions()})

	got, err := e.Apply(base, Edit{Type: SetOptions, Options: ambiguous})
	if !errors.Is(err, ErrInvalidEdit) || !errors.Is(err, variant.ErrInvalidOptions) {
		t.Fatalf("want ErrInvalidEdit wrapping ErrInvalidOptions, got %v", err)
	}
	if len(got.Variants) != len(base.Variants) {
		t.Fatalf("rejected edit changed the draft: %d variants", len(got.Variants))
	}

	if _, err := e.Normalize(model.Product{Options: ambiguous}); !errors.Is(err, ErrInvalidEdit) {
		t.Fatalf("seeded draft: want ErrInvalidEdit, got %v", err)
	}

	// Further edits keep every variant id distinct.
	next := mustApply(t, e, base, Edit{Type: SetTitle, Value: "Tee"})
	seen := map[string]bool{}
	for _, v := range next.Variants {
		if seen[v.ID] {
			t.Fatalf("duplicate variant id %s", v.ID)
		}
		seen[v.ID] = true
	}
}

func colorSizeOptions() []model.Option {
	return []model.Option{
		{Name: "Color", Values: []string{"Black", "White"}},
		{Name: "Size", Values: []string{"S", "M"}},
	}
}

func TestApply_SizingFollowsSizeOption(t *testing.T) {
	e := newEngine()
	p := mustApply(t, e, model.Product{},
		Edit{Type: SetOptions, Options: []model.Option{{Name: "Size", Values: []string{"S", "M"}}}},
		Edit{Type: SetSizingCategory, Value: "tops"},
		Edit{Type: SetMeasurement, Size: "S", Column: "chest", Measurement: measure(34)},
		Edit{Type: SetOptions, Options: []model.Option{{Name: "Size", Values: []string{"S", "M", "L"}}}},
	)

	chart := p.SizingGuide.SizeChart
	if len(chart) != 3 {
		t.Fatalf("want 3 rows, got %v", chart)
	}
	if chart["S"]["chest"] != 34 {
		t.Fatalf("existing measurement lost: %v", chart["S"])
	}
	if chart["L"]["chest"] != model.Unmeasured {
		t.Fatalf("new row should be unmeasured: %v", chart["L"])
	}

	p = mustApply(t, e, p, Edit{Type: SetSizingCategory, Value: "outerwear"})
	if p.SizingGuide.SizeChart["S"]["chest"] != model.Unmeasured {
		t.Fatal("category change should rebuild the chart")
	}
}

func TestApply_SingleQuantityWithoutVariants(t *testing.T) {
	e := newEngine()
	p := mustApply(t, e, model.Product{}, Edit{Type: SetSingleQuantity, Quantity: qty(4)})
	if p.Inventory.Quantity != 4 || !p.Inventory.InStock {
		t.Fatalf("unexpected inventory %+v", p.Inventory)
	}
}

func TestApply_SetDefaultVariant(t *testing.T) {
	e := newEngine()
	p := mustApply(t, e, model.Product{}, Edit{Type: SetOptions, Options: []model.Option{{Name: "Size", Values: []string{"S", "M"}}}})
	p = mustApply(t, e, p, Edit{Type: SetDefaultVariant, VariantID: p.Variants[1].ID})
	if p.Variants[0].IsDefault || !p.Variants[1].IsDefault {
		t.Fatalf("default not moved: %+v", p.Variants)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	e := newEngine()
	seed := model.Product{
		Price:       decimal.NewFromInt(100),
		Options:     []model.Option{{Name: "Size", Values: []string{"S", "M"}}},
		SizingGuide: &model.SizingGuide{Category: "tops"},
	}
	once, err := e.Normalize(seed)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := e.Normalize(once)
	if err != nil {
		t.Fatal(err)
	}
	for i := range once.Variants {
		if once.Variants[i].ID != twice.Variants[i].ID {
			t.Fatal("normalize should keep variant identity")
		}
	}
	if len(twice.SizingGuide.SizeChart) != 2 {
		t.Fatalf("want 2 chart rows, got %v", twice.SizingGuide.SizeChart)
	}
}
