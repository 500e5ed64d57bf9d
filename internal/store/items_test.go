package store

import (
	"context"
	"testing"

	"github.com/erazemk/reclaim/internal/db"
	"github.com/erazemk/reclaim/internal/model"
)

func newItem(t *testing.T, ctx context.Context, q DBTX, ownerID int64, name string) *model.Item {
	t.Helper()
	item, err := CreateItem(ctx, q, ownerID, model.ItemKindLost, model.ItemInput{
		Name:        name,
		Location:    "Library",
		Date:        "2026-10-01",
		Description: "black leather",
		Contact:     "555-0101",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	if item.Name != "Wallet" {
		t.Errorf("expected name 'Wallet', got %q", item.Name)
	}
	if item.Status != model.ItemStatusActive {
		t.Errorf("expected status 'active', got %q", item.Status)
	}
	if item.Kind != model.ItemKindLost {
		t.Errorf("expected kind 'lost', got %q", item.Kind)
	}

	missing, err := GetItem(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := newItem(t, ctx, database, 1, "Wallet")
	second := newItem(t, ctx, database, 1, "Umbrella")

	items, err := ListItems(ctx, database, model.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Errorf("expected newest first, got %d then %d", items[0].ID, items[1].ID)
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	wallet := newItem(t, ctx, database, 1, "Wallet")
	newItem(t, ctx, database, 2, "Umbrella")
	CreateItem(ctx, database, 2, model.ItemKindFound, model.ItemInput{
		Name: "Keys", Location: "Gate 100%", Date: "2026-10-02", Contact: "x", ImageRef: "img",
	})
	MarkItemReturned(ctx, database, wallet.ID, 1)

	active, _ := ListItems(ctx, database, model.ItemFilter{Status: model.ItemStatusActive})
	if len(active) != 2 {
		t.Errorf("expected 2 active items, got %d", len(active))
	}

	returned, _ := ListItems(ctx, database, model.ItemFilter{Status: model.ItemStatusReturned})
	if len(returned) != 1 || returned[0].ID != wallet.ID {
		t.Errorf("expected only the wallet to be returned, got %v", returned)
	}

	found, _ := ListItems(ctx, database, model.ItemFilter{Kind: model.ItemKindFound})
	if len(found) != 1 {
		t.Errorf("expected 1 found item, got %d", len(found))
	}

	mine, _ := ListItems(ctx, database, model.ItemFilter{OwnerID: 2})
	if len(mine) != 2 {
		t.Errorf("expected 2 items for owner 2, got %d", len(mine))
	}

	// Query matches name, location and description case-insensitively.
	byName, _ := ListItems(ctx, database, model.ItemFilter{Query: "umbr"})
	if len(byName) != 1 {
		t.Errorf("expected 1 match on name, got %d", len(byName))
	}
	byDesc, _ := ListItems(ctx, database, model.ItemFilter{Query: "LEATHER"})
	if len(byDesc) != 2 {
		t.Errorf("expected 2 matches on description, got %d", len(byDesc))
	}
	// LIKE wildcards in the query are literal.
	byPercent, _ := ListItems(ctx, database, model.ItemFilter{Query: "100%"})
	if len(byPercent) != 1 {
		t.Errorf("expected 1 match on literal percent, got %d", len(byPercent))
	}
	none, _ := ListItems(ctx, database, model.ItemFilter{Query: "%"})
	if len(none) != 1 {
		t.Errorf("expected '%%' to match only the literal percent, got %d", len(none))
	}
}

func TestMarkItemReturnedOnlyOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")

	ok, err := MarkItemReturned(ctx, database, item.ID, 7)
	if err != nil || !ok {
		t.Fatalf("first MarkItemReturned: ok=%v err=%v", ok, err)
	}
	ok, err = MarkItemReturned(ctx, database, item.ID, 7)
	if err != nil {
		t.Fatalf("second MarkItemReturned: %v", err)
	}
	if ok {
		t.Error("expected second return to report no change")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusReturned {
		t.Errorf("expected returned, got %q", got.Status)
	}
	if got.ReturnedRequestID == nil || *got.ReturnedRequestID != 7 {
		t.Errorf("expected returned_request_id 7, got %v", got.ReturnedRequestID)
	}
}
