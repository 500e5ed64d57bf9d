package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/reclaim/internal/model"
)

const itemColumns = `id, owner_id, kind, status, name, location, date, description, contact,
        image_ref, returned_request_id, created_at, updated_at`

// CreateItem inserts a new active item.
func CreateItem(ctx context.Context, q DBTX, ownerID int64, kind model.ItemKind, in model.ItemInput) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (owner_id, kind, name, location, date, description, contact, image_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, kind, in.Name, in.Location, in.Date, in.Description, in.Contact, nullString(in.ImageRef),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, q DBTX, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, q DBTX, f model.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.OwnerID > 0 {
		query += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		like := "%" + escapeLike(strings.ToLower(text)) + "%"
		query += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
		args = append(args, like, like, like)
	}

	query += ` ORDER BY id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkItemReturned flips an active item to returned. It reports false when
// the item was not active, so concurrent callers cannot both succeed.
func MarkItemReturned(ctx context.Context, q DBTX, id, requestID int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, returned_request_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.ItemStatusReturned, requestID, id, model.ItemStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("marking item returned: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking returned item: %w", err)
	}
	return n == 1, nil
}

// ItemsByImageRef returns the items that use the given image.
func ItemsByImageRef(ctx context.Context, q DBTX, ref string) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE image_ref = ? ORDER BY id`, ref,
	)
	if err != nil {
		return nil, fmt.Errorf("getting items by image: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var imageRef sql.NullString
	var returnedReq sql.NullInt64
	err := row.Scan(&item.ID, &item.OwnerID, &item.Kind, &item.Status, &item.Name, &item.Location,
		&item.Date, &item.Description, &item.Contact, &imageRef, &returnedReq,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ImageRef = imageRef.String
	if returnedReq.Valid {
		id := returnedReq.Int64
		item.ReturnedRequestID = &id
	}
	return item, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
