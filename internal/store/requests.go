package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/reclaim/internal/model"
)

const requestColumns = `r.id, r.item_id, r.claimant_id, r.message, r.proof_ref, r.status, r.created_at, r.decided_at`

// CreateRequest inserts a new pending claim request.
func CreateRequest(ctx context.Context, q DBTX, itemID, claimantID int64, message, proofRef string) (*model.ClaimRequest, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO claim_requests (item_id, claimant_id, message, proof_ref) VALUES (?, ?, ?, ?)`,
		itemID, claimantID, message, nullString(proofRef),
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim request id: %w", err)
	}

	return GetRequest(ctx, q, id)
}

// GetRequest returns a claim request by ID.
func GetRequest(ctx context.Context, q DBTX, id int64) (*model.ClaimRequest, error) {
	req, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r WHERE r.id = ?`, id,
	))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim request: %w", err)
	}
	return req, nil
}

// GetActiveRequest returns the pending or accepted request of a claimant on an item.
func GetActiveRequest(ctx context.Context, q DBTX, itemID, claimantID int64) (*model.ClaimRequest, error) {
	req, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r
		 WHERE r.item_id = ? AND r.claimant_id = ? AND r.status IN (?, ?)`,
		itemID, claimantID, model.RequestStatusPending, model.RequestStatusAccepted,
	))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting active claim request: %w", err)
	}
	return req, nil
}

// GetLatestRequest returns the most recent request of a claimant on an item.
func GetLatestRequest(ctx context.Context, q DBTX, itemID, claimantID int64) (*model.ClaimRequest, error) {
	req, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r
		 WHERE r.item_id = ? AND r.claimant_id = ?
		 ORDER BY r.id DESC LIMIT 1`,
		itemID, claimantID,
	))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest claim request: %w", err)
	}
	return req, nil
}

// GetAcceptedRequest returns the accepted request on an item, if any.
func GetAcceptedRequest(ctx context.Context, q DBTX, itemID int64) (*model.ClaimRequest, error) {
	req, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r WHERE r.item_id = ? AND r.status = ?`,
		itemID, model.RequestStatusAccepted,
	))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting accepted claim request: %w", err)
	}
	return req, nil
}

// UpdateRequestStatus moves a request from one status to another. It reports
// false when the request was no longer in the from status.
func UpdateRequestStatus(ctx context.Context, q DBTX, id int64, from, to model.RequestStatus) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, decided_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating claim request status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated claim request: %w", err)
	}
	return n == 1, nil
}

// RejectPendingRequests rejects every pending request on an item except keepID
// and returns the IDs it rejected.
func RejectPendingRequests(ctx context.Context, q DBTX, itemID, keepID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM claim_requests WHERE item_id = ? AND id != ? AND status = ? ORDER BY id`,
		itemID, keepID, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending claim requests: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning claim request id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pending claim requests: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	_, err = q.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, decided_at = CURRENT_TIMESTAMP
		 WHERE item_id = ? AND id != ? AND status = ?`,
		model.RequestStatusRejected, itemID, keepID, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting pending claim requests: %w", err)
	}
	return ids, nil
}

// ListItemRequests returns all requests on an item, newest first.
func ListItemRequests(ctx context.Context, q DBTX, itemID int64) ([]model.ClaimRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r WHERE r.item_id = ? ORDER BY r.id DESC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item claim requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.ClaimRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

// ListAcceptedItemIDs returns the IDs of items on which the claimant holds an
// accepted request.
func ListAcceptedItemIDs(ctx context.Context, q DBTX, claimantID int64) (map[int64]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT item_id FROM claim_requests WHERE claimant_id = ? AND status = ?`,
		claimantID, model.RequestStatusAccepted,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accepted items: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning item id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ListInbox returns every request a user sent or received, newest first.
func ListInbox(ctx context.Context, q DBTX, userID int64) ([]model.InboxEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+`, i.name, i.status, i.owner_id
		 FROM claim_requests r
		 JOIN items i ON i.id = r.item_id
		 WHERE i.owner_id = ? OR r.claimant_id = ?
		 ORDER BY r.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inbox: %w", err)
	}
	defer rows.Close()

	var entries []model.InboxEntry
	for rows.Next() {
		var e model.InboxEntry
		var proofRef sql.NullString
		r := &e.Request
		if err := rows.Scan(&r.ID, &r.ItemID, &r.ClaimantID, &r.Message, &proofRef, &r.Status,
			&r.CreatedAt, &r.DecidedAt, &e.ItemName, &e.ItemStatus, &e.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning inbox entry: %w", err)
		}
		r.ProofRef = proofRef.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RequestsByProofRef returns the requests that use the given proof image.
func RequestsByProofRef(ctx context.Context, q DBTX, ref string) ([]model.ClaimRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM claim_requests r WHERE r.proof_ref = ? ORDER BY r.id`, ref,
	)
	if err != nil {
		return nil, fmt.Errorf("getting requests by proof: %w", err)
	}
	defer rows.Close()

	var reqs []model.ClaimRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func scanRequest(row rowScanner) (*model.ClaimRequest, error) {
	req := &model.ClaimRequest{}
	var proofRef sql.NullString
	err := row.Scan(&req.ID, &req.ItemID, &req.ClaimantID, &req.Message, &proofRef, &req.Status,
		&req.CreatedAt, &req.DecidedAt)
	if err != nil {
		return nil, err
	}
	req.ProofRef = proofRef.String
	return req, nil
}
