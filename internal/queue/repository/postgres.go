package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/queue/dto"
	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS queue_items (
        id                   TEXT PRIMARY KEY,
        merchant_id          TEXT NOT NULL,
        status               TEXT NOT NULL,
        title                TEXT NOT NULL DEFAULT '',
        errors               TEXT NOT NULL DEFAULT '[]',
        product              TEXT NOT NULL,
        source_product_id    TEXT NOT NULL DEFAULT '',
        published_product_id TEXT NOT NULL DEFAULT '',
        discard_reason       TEXT NOT NULL DEFAULT '',
        created_at           TIMESTAMP NOT NULL,
        updated_at           TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_queue_items_merchant_status ON queue_items (merchant_id, status)`,
}

// itemRow is the storage shape of a queue item; the draft and error list are stored as JSON text.
type itemRow struct {
	ID                 string    `db:"id"`
	MerchantID         string    `db:"merchant_id"`
	Status             string    `db:"status"`
	Title              string    `db:"title"`
	Errors             string    `db:"errors"`
	Product            string    `db:"product"`
	SourceProductID    string    `db:"source_product_id"`
	PublishedProductID string    `db:"published_product_id"`
	DiscardReason      string    `db:"discard_reason"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Migrate creates the queue table when it does not exist yet.
func (r *PGRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate queue_items: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) Create(ctx context.Context, item *model.QueueItem) error {
	row, err := toRow(item)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO queue_items (
            id, merchant_id, status, title, errors, product,
            source_product_id, published_product_id, discard_reason, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :status, :title, :errors, :product,
            :source_product_id, :published_product_id, :discard_reason, :created_at, :updated_at
        )
    `
	_, err = r.DB.NamedExecContext(ctx, query, row)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.QueueItem, error) {
	var row itemRow
	query := r.DB.Rebind(`SELECT * FROM queue_items WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return fromRow(&row)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.QueueItem, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = string(f.Status)
	} else if !f.IncludeTerminal {
		conditions = append(conditions, "status NOT IN (:published, :discarded)")
		args["published"] = string(model.QueuePublished)
		args["discarded"] = string(model.QueueDiscarded)
	}
	if f.SearchQuery != "" {
		// LOWER/LIKE instead of ILIKE keeps the query portable to sqlite
		conditions = append(conditions, "LOWER(title) LIKE :search")
		args["search"] = "%" + strings.ToLower(f.SearchQuery) + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM queue_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	query := "SELECT * FROM queue_items" + whereClause + " ORDER BY updated_at DESC, id"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var stored []itemRow
	if err := nstmt.SelectContext(ctx, &stored, args); err != nil {
		return nil, 0, err
	}

	items := make([]model.QueueItem, 0, len(stored))
	for i := range stored {
		item, err := fromRow(&stored[i])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, count, nil
}

func (r *PGRepository) Update(ctx context.Context, item *model.QueueItem) error {
	row, err := toRow(item)
	if err != nil {
		return err
	}
	query := `
        UPDATE queue_items
        SET status = :status,
            title = :title,
            errors = :errors,
            product = :product,
            published_product_id = :published_product_id,
            discard_reason = :discard_reason,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	res, err := r.DB.NamedExecContext(ctx, query, row)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update queue item %s: %w", item.ID, sql.ErrNoRows)
	}
	return nil
}

func toRow(item *model.QueueItem) (*itemRow, error) {
	product, err := json.Marshal(item.Product)
	if err != nil {
		return nil, fmt.Errorf("encode product: %w", err)
	}
	errs := item.Errors
	if errs == nil {
		errs = []string{}
	}
	errJSON, err := json.Marshal(errs)
	if err != nil {
		return nil, fmt.Errorf("encode errors: %w", err)
	}
	return &itemRow{
		ID:                 item.ID,
		MerchantID:         item.MerchantID,
		Status:             string(item.Status),
		Title:              item.Product.Title,
		Errors:             string(errJSON),
		Product:            string(product),
		SourceProductID:    item.SourceProductID,
		PublishedProductID: item.PublishedProductID,
		DiscardReason:      item.DiscardReason,
		CreatedAt:          item.CreatedAt.UTC(),
		UpdatedAt:          item.UpdatedAt.UTC(),
	}, nil
}

func fromRow(row *itemRow) (*model.QueueItem, error) {
	item := &model.QueueItem{
		ID:                 row.ID,
		MerchantID:         row.MerchantID,
		Status:             model.QueueStatus(row.Status),
		SourceProductID:    row.SourceProductID,
		PublishedProductID: row.PublishedProductID,
		DiscardReason:      row.DiscardReason,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Product), &item.Product); err != nil {
		return nil, fmt.Errorf("decode product for %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Errors), &item.Errors); err != nil {
		return nil, fmt.Errorf("decode errors for %s: %w", row.ID, err)
	}
	if len(item.Errors) == 0 {
		item.Errors = nil
	}
	return item, nil
}
