// Package exchange implements the claim workflow of the lost-and-found
// exchange: item reports, claim requests and their decisions, the disclosure
// rules for private item fields and the chat between an owner and an accepted
// claimant.
//
// Every operation takes the acting user's ID explicitly. Transitions run in
// a single database transaction and use conditional updates keyed on the
// current status, so concurrent callers cannot both win the same transition.
package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/reclaim/internal/metrics"
	"github.com/erazemk/reclaim/internal/model"
	"github.com/erazemk/reclaim/internal/store"
)

// Coordinator drives every workflow transition and read path.
type Coordinator struct {
	log      *slog.Logger
	db       *sql.DB
	items    *ItemStore
	requests *RequestLedger
	chat     *ChatChannel
}

// New creates a Coordinator over db. A nil clock uses the wall clock.
func New(logger *slog.Logger, db *sql.DB, clock *Clock) *Coordinator {
	chat := NewChatChannel(db, clock)
	return &Coordinator{
		log:      logger.With("component", "exchange"),
		db:       db,
		items:    NewItemStore(db),
		requests: NewRequestLedger(db, chat),
		chat:     chat,
	}
}

// ItemView is an item as one viewer may see it.
type ItemView struct {
	Item       model.Item       `json:"item"`
	Disclosure model.Disclosure `json:"disclosure"`
	IsOwner    bool             `json:"is_owner"`
	// MyRequest is the viewer's most recent request on the item.
	MyRequest *model.ClaimRequest `json:"my_request,omitempty"`
	CanClaim  bool                `json:"can_claim"`
}

// ReportItem records a lost or found item owned by actorID.
func (c *Coordinator) ReportItem(ctx context.Context, actorID int64, kind model.ItemKind, in model.ItemInput) (*model.Item, error) {
	item, err := c.items.Create(ctx, actorID, kind, in)
	if err != nil {
		return nil, c.fail(ctx, "report_item", err)
	}

	metrics.ItemsReportedTotal.WithLabelValues(string(kind)).Inc()
	c.log.InfoContext(ctx, "item reported",
		slog.Int64("item_id", item.ID),
		slog.Int64("actor_id", actorID),
		slog.String("kind", string(kind)))

	return item, nil
}

// SubmitClaim files a claim by actorID on itemID.
func (c *Coordinator) SubmitClaim(ctx context.Context, actorID, itemID int64, message, proofRef string) (*model.ClaimRequest, error) {
	req, err := c.requests.Submit(ctx, itemID, actorID, message, proofRef)
	if err != nil {
		return nil, c.fail(ctx, "submit_claim", err)
	}

	metrics.ClaimsSubmittedTotal.Inc()
	c.log.InfoContext(ctx, "claim submitted",
		slog.Int64("item_id", itemID),
		slog.Int64("request_id", req.ID),
		slog.Int64("actor_id", actorID))

	return req, nil
}

// Accept accepts a pending claim, auto-rejecting the item's other pending
// claims and opening the chat.
func (c *Coordinator) Accept(ctx context.Context, actorID, requestID int64) (*Decision, error) {
	d, err := c.requests.Decide(ctx, requestID, actorID, model.DecisionAccept)
	if err != nil {
		return nil, c.fail(ctx, "accept_claim", err)
	}

	metrics.ClaimsDecidedTotal.WithLabelValues(string(model.DecisionAccept)).Inc()
	if n := len(d.AutoRejected); n > 0 {
		metrics.ClaimsDecidedTotal.WithLabelValues(metrics.DecisionAutoRejected).Add(float64(n))
	}
	c.log.InfoContext(ctx, "claim accepted",
		slog.Int64("item_id", d.Request.ItemID),
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", actorID),
		slog.Int("auto_rejected", len(d.AutoRejected)))

	return d, nil
}

// Reject rejects a pending claim for good.
func (c *Coordinator) Reject(ctx context.Context, actorID, requestID int64) (*model.ClaimRequest, error) {
	d, err := c.requests.Decide(ctx, requestID, actorID, model.DecisionReject)
	if err != nil {
		return nil, c.fail(ctx, "reject_claim", err)
	}

	metrics.ClaimsDecidedTotal.WithLabelValues(string(model.DecisionReject)).Inc()
	c.log.InfoContext(ctx, "claim rejected",
		slog.Int64("item_id", d.Request.ItemID),
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", actorID))

	return d.Request, nil
}

// SendMessage appends a chat message from actorID.
func (c *Coordinator) SendMessage(ctx context.Context, actorID, requestID int64, body string) (*model.Message, error) {
	msg, err := c.chat.Append(ctx, requestID, actorID, body)
	if err != nil {
		return nil, c.fail(ctx, "send_message", err)
	}

	metrics.MessagesSentTotal.Inc()
	c.log.DebugContext(ctx, "message sent",
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", actorID))

	return msg, nil
}

// MarkReturned closes the loop on an item that has an accepted claim. The
// item's chat becomes read-only.
func (c *Coordinator) MarkReturned(ctx context.Context, actorID, itemID int64) (*model.Item, error) {
	var item *model.Item
	var requestID int64
	err := store.InTx(ctx, c.db, func(tx *sql.Tx) error {
		var err error
		item, requestID, err = c.items.markReturned(ctx, tx, itemID, actorID)
		if err != nil {
			return err
		}
		return store.RecordEvent(ctx, tx, itemID, &requestID, actorID, model.EventItemReturned)
	})
	if err != nil {
		return nil, c.fail(ctx, "mark_returned", err)
	}

	metrics.ItemsReturnedTotal.Inc()
	c.log.InfoContext(ctx, "item returned",
		slog.Int64("item_id", itemID),
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", actorID))

	return item, nil
}

// ViewItem returns an item redacted for viewerID.
func (c *Coordinator) ViewItem(ctx context.Context, viewerID, itemID int64) (*ItemView, error) {
	item, err := c.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view := &ItemView{IsOwner: item.OwnerID == viewerID}
	if !view.IsOwner {
		view.MyRequest, err = store.GetLatestRequest(ctx, c.db, itemID, viewerID)
		if err != nil {
			return nil, err
		}
		view.CanClaim = item.Status == model.ItemStatusActive &&
			(view.MyRequest == nil || view.MyRequest.Status == model.RequestStatusRejected)
	}

	view.Disclosure = Reveal(viewerID, item, view.MyRequest)
	view.Item = Redact(*item, view.Disclosure)
	return view, nil
}

// Browse lists items matching f, each redacted for viewerID.
func (c *Coordinator) Browse(ctx context.Context, viewerID int64, f model.ItemFilter) ([]ItemView, error) {
	items, err := c.items.List(ctx, f)
	if err != nil {
		return nil, err
	}
	accepted, err := store.ListAcceptedItemIDs(ctx, c.db, viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for i := range items {
		item := &items[i]
		var req *model.ClaimRequest
		if accepted[item.ID] {
			req = &model.ClaimRequest{ItemID: item.ID, ClaimantID: viewerID, Status: model.RequestStatusAccepted}
		}
		d := Reveal(viewerID, item, req)
		views = append(views, ItemView{
			Item:       Redact(*item, d),
			Disclosure: d,
			IsOwner:    item.OwnerID == viewerID,
		})
	}
	return views, nil
}

// Inbox returns the requests userID sent or received.
func (c *Coordinator) Inbox(ctx context.Context, userID int64) ([]model.InboxEntry, error) {
	entries, err := c.requests.ListForUser(ctx, userID)
	if err != nil {
		return nil, c.fail(ctx, "inbox", err)
	}
	return entries, nil
}

// ItemRequests returns all claims on an item for its owner.
func (c *Coordinator) ItemRequests(ctx context.Context, actorID, itemID int64) ([]model.ClaimRequest, error) {
	return c.requests.ForItem(ctx, itemID, actorID)
}

// ChatHistory returns the chat of requestID for one of its parties.
func (c *Coordinator) ChatHistory(ctx context.Context, viewerID, requestID int64) (*ChatView, error) {
	return c.chat.History(ctx, requestID, viewerID)
}

// ItemHistory returns the audit trail of an item for its owner.
func (c *Coordinator) ItemHistory(ctx context.Context, actorID, itemID int64) ([]model.ItemEvent, error) {
	item, err := c.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("item %d: only the owner can see its history: %w", itemID, model.ErrForbidden)
	}
	return store.ListItemEvents(ctx, c.db, itemID)
}

// CanViewImage reports whether viewerID may fetch the image ref. Viewers may
// fetch images they uploaded, images of items they may see in full, and
// proof images of claims they made or received.
func (c *Coordinator) CanViewImage(ctx context.Context, viewerID int64, ref string) (bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false, nil
	}

	uploader, err := store.GetImageUploader(ctx, c.db, ref)
	if err != nil {
		return false, err
	}
	if uploader != 0 && uploader == viewerID {
		return true, nil
	}

	items, err := store.ItemsByImageRef(ctx, c.db, ref)
	if err != nil {
		return false, err
	}
	for i := range items {
		item := &items[i]
		req, err := store.GetLatestRequest(ctx, c.db, item.ID, viewerID)
		if err != nil {
			return false, err
		}
		if Reveal(viewerID, item, req).ShowFull {
			return true, nil
		}
	}

	reqs, err := store.RequestsByProofRef(ctx, c.db, ref)
	if err != nil {
		return false, err
	}
	for _, req := range reqs {
		if req.ClaimantID == viewerID {
			return true, nil
		}
		item, err := c.items.Get(ctx, req.ItemID)
		if err != nil {
			return false, err
		}
		if item.OwnerID == viewerID {
			return true, nil
		}
	}

	return false, nil
}

// fail counts err against op and logs it when it is not a business-rule
// failure.
func (c *Coordinator) fail(ctx context.Context, op string, err error) error {
	kind := model.ErrorKind(err)
	metrics.OperationErrorsTotal.WithLabelValues(op, kind).Inc()
	if kind == "internal" {
		c.log.ErrorContext(ctx, "workflow operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	return err
}
