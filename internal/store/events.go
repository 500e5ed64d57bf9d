package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/reclaim/internal/model"
)

// RecordEvent appends an audit event for an item.
func RecordEvent(ctx context.Context, q DBTX, itemID int64, requestID *int64, actorID int64, action string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO item_events (item_id, request_id, actor_id, action) VALUES (?, ?, ?, ?)`,
		itemID, requestID, actorID, action,
	)
	if err != nil {
		return fmt.Errorf("recording %s event: %w", action, err)
	}
	return nil
}

// ListItemEvents returns the audit trail of an item, oldest first.
func ListItemEvents(ctx context.Context, q DBTX, itemID int64) ([]model.ItemEvent, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, item_id, request_id, actor_id, action, created_at
		 FROM item_events WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item events: %w", err)
	}
	defer rows.Close()

	var events []model.ItemEvent
	for rows.Next() {
		var e model.ItemEvent
		var requestID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ItemID, &requestID, &e.ActorID, &e.Action, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item event: %w", err)
		}
		if requestID.Valid {
			id := requestID.Int64
			e.RequestID = &id
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
