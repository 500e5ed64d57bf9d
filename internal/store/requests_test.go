package store

import (
	"context"
	"testing"

	"github.com/erazemk/reclaim/internal/db"
	"github.com/erazemk/reclaim/internal/model"
)

func TestCreateAndGetRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	req, err := CreateRequest(ctx, database, item.ID, 2, "it has my ID card", "")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Errorf("expected pending, got %q", req.Status)
	}
	if req.DecidedAt != nil {
		t.Error("expected no decision time on a new request")
	}

	active, err := GetActiveRequest(ctx, database, item.ID, 2)
	if err != nil {
		t.Fatalf("GetActiveRequest: %v", err)
	}
	if active == nil || active.ID != req.ID {
		t.Errorf("expected active request %d, got %v", req.ID, active)
	}

	missing, _ := GetRequest(ctx, database, 999)
	if missing != nil {
		t.Error("expected nil for missing request")
	}
}

func TestActivePairIsUnique(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	first, _ := CreateRequest(ctx, database, item.ID, 2, "mine", "")

	_, err := CreateRequest(ctx, database, item.ID, 2, "mine again", "")
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// A rejected request frees the pair.
	UpdateRequestStatus(ctx, database, first.ID, model.RequestStatusPending, model.RequestStatusRejected)
	second, err := CreateRequest(ctx, database, item.ID, 2, "third time", "")
	if err != nil {
		t.Fatalf("CreateRequest after rejection: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new request id")
	}

	latest, _ := GetLatestRequest(ctx, database, item.ID, 2)
	if latest.ID != second.ID {
		t.Errorf("expected latest request %d, got %d", second.ID, latest.ID)
	}
}

func TestUpdateRequestStatusIsConditional(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	req, _ := CreateRequest(ctx, database, item.ID, 2, "mine", "")

	ok, err := UpdateRequestStatus(ctx, database, req.ID, model.RequestStatusPending, model.RequestStatusAccepted)
	if err != nil || !ok {
		t.Fatalf("accepting: ok=%v err=%v", ok, err)
	}

	ok, _ = UpdateRequestStatus(ctx, database, req.ID, model.RequestStatusPending, model.RequestStatusRejected)
	if ok {
		t.Error("expected second transition from pending to fail")
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if got.Status != model.RequestStatusAccepted {
		t.Errorf("expected accepted, got %q", got.Status)
	}
	if got.DecidedAt == nil {
		t.Error("expected decision time to be set")
	}

	accepted, _ := GetAcceptedRequest(ctx, database, item.ID)
	if accepted == nil || accepted.ID != req.ID {
		t.Errorf("expected accepted request %d, got %v", req.ID, accepted)
	}
}

func TestOneAcceptedPerItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	a, _ := CreateRequest(ctx, database, item.ID, 2, "mine", "")
	b, _ := CreateRequest(ctx, database, item.ID, 3, "no, mine", "")

	UpdateRequestStatus(ctx, database, a.ID, model.RequestStatusPending, model.RequestStatusAccepted)
	_, err := UpdateRequestStatus(ctx, database, b.ID, model.RequestStatusPending, model.RequestStatusAccepted)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation on second acceptance, got %v", err)
	}
}

func TestRejectPendingRequests(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	other := newItem(t, ctx, database, 1, "Umbrella")
	keep, _ := CreateRequest(ctx, database, item.ID, 2, "a", "")
	b, _ := CreateRequest(ctx, database, item.ID, 3, "b", "")
	c, _ := CreateRequest(ctx, database, item.ID, 4, "c", "")
	elsewhere, _ := CreateRequest(ctx, database, other.ID, 3, "d", "")

	ids, err := RejectPendingRequests(ctx, database, item.ID, keep.ID)
	if err != nil {
		t.Fatalf("RejectPendingRequests: %v", err)
	}
	if len(ids) != 2 || ids[0] != b.ID || ids[1] != c.ID {
		t.Errorf("expected [%d %d], got %v", b.ID, c.ID, ids)
	}

	for _, tc := range []struct {
		id   int64
		want model.RequestStatus
	}{
		{keep.ID, model.RequestStatusPending},
		{b.ID, model.RequestStatusRejected},
		{c.ID, model.RequestStatusRejected},
		{elsewhere.ID, model.RequestStatusPending},
	} {
		got, _ := GetRequest(ctx, database, tc.id)
		if got.Status != tc.want {
			t.Errorf("request %d: expected %q, got %q", tc.id, tc.want, got.Status)
		}
	}

	ids, _ = RejectPendingRequests(ctx, database, item.ID, keep.ID)
	if len(ids) != 0 {
		t.Errorf("expected nothing left to reject, got %v", ids)
	}
}

func TestListInbox(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	mine := newItem(t, ctx, database, 1, "Wallet")
	theirs := newItem(t, ctx, database, 2, "Umbrella")
	received, _ := CreateRequest(ctx, database, mine.ID, 2, "mine", "")
	sent, _ := CreateRequest(ctx, database, theirs.ID, 1, "no, mine", "")
	CreateRequest(ctx, database, theirs.ID, 3, "unrelated", "")

	entries, err := ListInbox(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 inbox entries, got %d", len(entries))
	}
	if entries[0].Request.ID != sent.ID || entries[1].Request.ID != received.ID {
		t.Errorf("expected newest first, got %d then %d", entries[0].Request.ID, entries[1].Request.ID)
	}
	if entries[0].ItemName != "Umbrella" || entries[0].OwnerID != 2 {
		t.Errorf("unexpected item data on sent entry: %+v", entries[0])
	}
}

func TestListItemRequestsAndAccepted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, ctx, database, 1, "Wallet")
	a, _ := CreateRequest(ctx, database, item.ID, 2, "a", "proof-ref")
	CreateRequest(ctx, database, item.ID, 3, "b", "")

	reqs, err := ListItemRequests(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListItemRequests: %v", err)
	}
	if len(reqs) != 2 || reqs[1].ID != a.ID {
		t.Fatalf("expected 2 requests newest first, got %v", reqs)
	}
	if reqs[1].ProofRef != "proof-ref" {
		t.Errorf("expected proof ref, got %q", reqs[1].ProofRef)
	}

	UpdateRequestStatus(ctx, database, a.ID, model.RequestStatusPending, model.RequestStatusAccepted)
	ids, _ := ListAcceptedItemIDs(ctx, database, 2)
	if !ids[item.ID] {
		t.Error("expected item to be listed as accepted for claimant 2")
	}
	ids, _ = ListAcceptedItemIDs(ctx, database, 3)
	if len(ids) != 0 {
		t.Errorf("expected no accepted items for claimant 3, got %v", ids)
	}

	byProof, _ := RequestsByProofRef(ctx, database, "proof-ref")
	if len(byProof) != 1 || byProof[0].ID != a.ID {
		t.Errorf("expected request %d by proof, got %v", a.ID, byProof)
	}
}
