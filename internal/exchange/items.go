package exchange

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/reclaim/internal/model"
	"github.com/erazemk/reclaim/internal/store"
)

// ItemStore holds item reports. Status changes only through markReturned.
type ItemStore struct {
	db *sql.DB
}

// NewItemStore creates an ItemStore backed by db.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// Create validates and stores a new active item for ownerID.
func (s *ItemStore) Create(ctx context.Context, ownerID int64, kind model.ItemKind, in model.ItemInput) (*model.Item, error) {
	in, err := normalizeItem(kind, in)
	if err != nil {
		return nil, err
	}

	var item *model.Item
	err = store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		item, err = store.CreateItem(ctx, tx, ownerID, kind, in)
		if err != nil {
			return err
		}
		return store.RecordEvent(ctx, tx, item.ID, nil, ownerID, model.EventItemReported)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns an item or ErrNotFound.
func (s *ItemStore) Get(ctx context.Context, id int64) (*model.Item, error) {
	return getItem(ctx, s.db, id)
}

// List returns items matching f, most recent first.
func (s *ItemStore) List(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, f)
}

// markReturned flips an active item to returned on behalf of its owner. The
// flip is driven by the item's accepted request, whose ID is returned.
func (s *ItemStore) markReturned(ctx context.Context, q store.DBTX, itemID, actorID int64) (*model.Item, int64, error) {
	item, err := getItem(ctx, q, itemID)
	if err != nil {
		return nil, 0, err
	}
	if item.OwnerID != actorID {
		return nil, 0, fmt.Errorf("item %d: only the owner can mark it returned: %w", itemID, model.ErrForbidden)
	}
	if item.Status != model.ItemStatusActive {
		return nil, 0, fmt.Errorf("item %d is already returned: %w", itemID, model.ErrInvalidTransition)
	}

	accepted, err := store.GetAcceptedRequest(ctx, q, itemID)
	if err != nil {
		return nil, 0, err
	}
	if accepted == nil {
		return nil, 0, fmt.Errorf("item %d has no accepted claim: %w", itemID, model.ErrInvalidTransition)
	}

	ok, err := store.MarkItemReturned(ctx, q, itemID, accepted.ID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("item %d is already returned: %w", itemID, model.ErrInvalidTransition)
	}

	item, err = getItem(ctx, q, itemID)
	if err != nil {
		return nil, 0, err
	}
	return item, accepted.ID, nil
}

func getItem(ctx context.Context, q store.DBTX, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return item, nil
}

func getRequest(ctx context.Context, q store.DBTX, id int64) (*model.ClaimRequest, error) {
	req, err := store.GetRequest(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", id, model.ErrNotFound)
	}
	return req, nil
}
