package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/shopspring/decimal"
)

func memdb(t *testing.T) *PGRepository {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every new connection would open its own empty in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewPGRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return repo
}

func item(id, merchant, title string, status model.QueueStatus, at time.Time) *model.QueueItem {
	compareAt := decimal.RequireFromString("199000")
	return &model.QueueItem{
		ID:         id,
		MerchantID: merchant,
		Status:     status,
		Errors:     []string{"Description is required"},
		Product: model.Product{
			Title:          title,
			Price:          decimal.RequireFromString("149000"),
			CompareAtPrice: &compareAt,
			Options:        []model.Option{{Name: "Size", Values: []string{"S", "M"}}},
			SizingGuide: &model.SizingGuide{
				Category:        "tops",
				SizeChart:       model.SizeChart{"S": {"chest": 88, "length": model.Unmeasured}},
				MeasurementUnit: model.UnitCM,
			},
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := memdb(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	if err := repo.Create(ctx, item("q1", "m1", "Boxy Tee", model.QueueNotReady, at)); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByID(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("want item, got nil")
	}
	if got.Product.Title != "Boxy Tee" || got.Status != model.QueueNotReady {
		t.Fatalf("unexpected item %+v", got)
	}
	if !got.Product.Price.Equal(decimal.NewFromInt(149000)) || got.Product.CompareAtPrice == nil {
		t.Fatalf("price not round-tripped: %v %v", got.Product.Price, got.Product.CompareAtPrice)
	}
	if got.Product.SizingGuide.SizeChart["S"]["length"] != model.Unmeasured {
		t.Fatalf("size chart not round-tripped: %+v", got.Product.SizingGuide.SizeChart)
	}
	if len(got.Errors) != 1 || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected errors/timestamps: %v %v", got.Errors, got.CreatedAt)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("want nil, nil; got %v, %v", missing, err)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := memdb(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	it := item("q1", "m1", "Boxy Tee", model.QueueNotReady, at)
	if err := repo.Create(ctx, it); err != nil {
		t.Fatal(err)
	}

	it.Status = model.QueueDiscarded
	it.DiscardReason = "duplicate"
	it.Errors = nil
	it.UpdatedAt = at.Add(time.Hour)
	if err := repo.Update(ctx, it); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.FindByID(ctx, "q1")
	if got.Status != model.QueueDiscarded || got.DiscardReason != "duplicate" || got.Errors != nil {
		t.Fatalf("unexpected item %+v", got)
	}

	other := item("q2", "m1", "x", model.QueueReady, at)
	if err := repo.Update(ctx, other); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
}

func TestRepository_FindAll(t *testing.T) {
	repo := memdb(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []*model.QueueItem{
		item("q1", "m1", "Boxy Tee", model.QueueReady, base),
		item("q2", "m1", "Pleated Skirt", model.QueueNotReady, base.Add(time.Minute)),
		item("q3", "m1", "Oversized Tee", model.QueuePublished, base.Add(2*time.Minute)),
		item("q4", "m2", "Boxy Tee", model.QueueReady, base.Add(3*time.Minute)),
	}
	for _, it := range seed {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		filters dto.ItemFilters
		want    []string
		total   int
	}{
		{"active only", dto.ItemFilters{MerchantID: "m1"}, []string{"q2", "q1"}, 2},
		{"include terminal", dto.ItemFilters{MerchantID: "m1", IncludeTerminal: true}, []string{"q3", "q2", "q1"}, 3},
		{"by status", dto.ItemFilters{MerchantID: "m1", Status: model.QueuePublished}, []string{"q3"}, 1},
		{"title search", dto.ItemFilters{MerchantID: "m1", IncludeTerminal: true, SearchQuery: "TEE"}, []string{"q3", "q1"}, 2},
		{"paged", dto.ItemFilters{MerchantID: "m1", IncludeTerminal: true, Page: 2, PageSize: 2}, []string{"q1"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.FindAll(ctx, &tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			if total != tt.total {
				t.Fatalf("want total %d, got %d", tt.total, total)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("want %d items, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: want %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
