package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/reclaim/internal/model"
	"github.com/erazemk/reclaim/internal/store"
)

// RequestLedger holds claim requests. A request leaves pending exactly once,
// through Decide.
type RequestLedger struct {
	db   *sql.DB
	chat *ChatChannel
}

// NewRequestLedger creates a RequestLedger. Accepted requests get a channel
// opened on chat.
func NewRequestLedger(db *sql.DB, chat *ChatChannel) *RequestLedger {
	return &RequestLedger{db: db, chat: chat}
}

// Decision is the outcome of Decide.
type Decision struct {
	Request *model.ClaimRequest `json:"request"`
	// AutoRejected lists sibling requests rejected because another claim on
	// the same item was accepted.
	AutoRejected []int64 `json:"auto_rejected,omitempty"`
}

// Submit files a pending claim by claimantID on itemID.
func (l *RequestLedger) Submit(ctx context.Context, itemID, claimantID int64, message, proofRef string) (*model.ClaimRequest, error) {
	message, err := normalizeText("message", message)
	if err != nil {
		return nil, err
	}
	proofRef = strings.TrimSpace(proofRef)

	var req *model.ClaimRequest
	err = store.InTx(ctx, l.db, func(tx *sql.Tx) error {
		item, err := getItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.OwnerID == claimantID {
			return fmt.Errorf("item %d: owners cannot claim their own item: %w", itemID, model.ErrForbidden)
		}
		if item.Status != model.ItemStatusActive {
			return fmt.Errorf("item %d is already returned: %w", itemID, model.ErrInvalidTransition)
		}
		if item.Kind == model.ItemKindFound && proofRef == "" {
			return model.NewValidationError("proof", "is required when claiming a found item")
		}

		active, err := store.GetActiveRequest(ctx, tx, itemID, claimantID)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("item %d already has request %d from this user: %w", itemID, active.ID, model.ErrConflict)
		}

		accepted, err := store.GetAcceptedRequest(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if accepted != nil {
			return fmt.Errorf("item %d already has an accepted claim: %w", itemID, model.ErrInvalidTransition)
		}

		req, err = store.CreateRequest(ctx, tx, itemID, claimantID, message, proofRef)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("item %d already has a request from this user: %w", itemID, model.ErrConflict)
		}
		if err != nil {
			return err
		}
		return store.RecordEvent(ctx, tx, itemID, &req.ID, claimantID, model.EventClaimSubmitted)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Decide applies the item owner's decision to a pending request. Accepting
// rejects every other pending request on the item and opens the chat channel
// in the same transaction.
func (l *RequestLedger) Decide(ctx context.Context, requestID, actorID int64, decision model.Decision) (*Decision, error) {
	to, ok := decision.Status()
	if !ok {
		return nil, model.NewValidationError("decision", "must be accept or reject")
	}

	result := &Decision{}
	err := store.InTx(ctx, l.db, func(tx *sql.Tx) error {
		req, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		item, err := getItem(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID != actorID {
			return fmt.Errorf("request %d: only the item owner can decide: %w", requestID, model.ErrForbidden)
		}
		if req.Status != model.RequestStatusPending {
			return fmt.Errorf("request %d is already %s: %w", requestID, req.Status, model.ErrInvalidTransition)
		}
		if to == model.RequestStatusAccepted && item.Status != model.ItemStatusActive {
			return fmt.Errorf("item %d is already returned: %w", item.ID, model.ErrInvalidTransition)
		}

		ok, err := store.UpdateRequestStatus(ctx, tx, requestID, model.RequestStatusPending, to)
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("item %d already has an accepted claim: %w", item.ID, model.ErrInvalidTransition)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("request %d is no longer pending: %w", requestID, model.ErrInvalidTransition)
		}

		if to == model.RequestStatusRejected {
			if err := store.RecordEvent(ctx, tx, item.ID, &requestID, actorID, model.EventClaimRejected); err != nil {
				return err
			}
		} else {
			result.AutoRejected, err = store.RejectPendingRequests(ctx, tx, item.ID, requestID)
			if err != nil {
				return err
			}
			if err := l.chat.open(ctx, tx, requestID); err != nil {
				return err
			}
			if err := store.RecordEvent(ctx, tx, item.ID, &requestID, actorID, model.EventClaimAccepted); err != nil {
				return err
			}
			for _, id := range result.AutoRejected {
				if err := store.RecordEvent(ctx, tx, item.ID, &id, actorID, model.EventClaimAutoRejected); err != nil {
					return err
				}
			}
		}

		result.Request, err = getRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a request or ErrNotFound.
func (l *RequestLedger) Get(ctx context.Context, id int64) (*model.ClaimRequest, error) {
	return getRequest(ctx, l.db, id)
}

// ListForUser returns every request userID sent or received, newest first.
func (l *RequestLedger) ListForUser(ctx context.Context, userID int64) ([]model.InboxEntry, error) {
	entries, err := store.ListInbox(ctx, l.db, userID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		e := &entries[i]
		sent := e.Request.ClaimantID == userID
		received := e.OwnerID == userID
		switch {
		case sent && received:
			return nil, fmt.Errorf("request %d: user %d is both owner and claimant", e.Request.ID, userID)
		case sent:
			e.Role = model.RoleSent
		default:
			e.Role = model.RoleReceived
		}
	}
	return entries, nil
}

// ForItem returns all requests on an item, newest first. Only the owner may
// list them.
func (l *RequestLedger) ForItem(ctx context.Context, itemID, actorID int64) ([]model.ClaimRequest, error) {
	item, err := getItem(ctx, l.db, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("item %d: only the owner can list its requests: %w", itemID, model.ErrForbidden)
	}
	return store.ListItemRequests(ctx, l.db, itemID)
}
