package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/reclaim/internal/model"
	"github.com/erazemk/reclaim/internal/store"
)

// ChatChannel holds the private thread between an item's owner and the
// claimant of an accepted request.
type ChatChannel struct {
	db    *sql.DB
	clock *Clock
}

// NewChatChannel creates a ChatChannel stamping messages with clock.
func NewChatChannel(db *sql.DB, clock *Clock) *ChatChannel {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &ChatChannel{db: db, clock: clock}
}

// ChatView is a request's message history as seen by one of its parties.
type ChatView struct {
	RequestID int64           `json:"request_id"`
	Messages  []model.Message `json:"messages"`
	// ReadOnly is set once the item is returned; the history stays visible
	// but no more messages can be sent.
	ReadOnly bool `json:"read_only"`
}

// open creates the channel of an accepted request. Opening twice is a no-op.
func (c *ChatChannel) open(ctx context.Context, q store.DBTX, requestID int64) error {
	return store.OpenChannel(ctx, q, requestID, c.clock.Next(time.Time{}))
}

// Append adds a message from senderID to the channel of requestID.
func (c *ChatChannel) Append(ctx context.Context, requestID, senderID int64, body string) (*model.Message, error) {
	var msg *model.Message
	err := store.InTx(ctx, c.db, func(tx *sql.Tx) error {
		req, item, err := c.parties(ctx, tx, requestID, senderID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestStatusAccepted {
			return fmt.Errorf("request %d is %s: %w", requestID, req.Status, model.ErrClosed)
		}
		if item.Status != model.ItemStatusActive {
			return fmt.Errorf("item %d is returned: %w", item.ID, model.ErrClosed)
		}
		exists, err := store.ChannelExists(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("request %d has no chat: %w", requestID, model.ErrClosed)
		}

		body, err = normalizeText("body", body)
		if err != nil {
			return err
		}

		last, err := store.LastMessageTime(ctx, tx, requestID)
		if err != nil {
			return err
		}
		msg, err = store.CreateMessage(ctx, tx, requestID, senderID, body, c.clock.Next(last))
		if err != nil {
			return err
		}

		sender, err := store.GetUser(ctx, tx, senderID)
		if err != nil {
			return err
		}
		if sender != nil {
			msg.SenderName = sender.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the messages of requestID, oldest first. Only the two
// parties may read it, and only once the channel was opened.
func (c *ChatChannel) History(ctx context.Context, requestID, viewerID int64) (*ChatView, error) {
	req, item, err := c.parties(ctx, c.db, requestID, viewerID)
	if err != nil {
		return nil, err
	}
	exists, err := store.ChannelExists(ctx, c.db, requestID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("request %d has no chat: %w", requestID, model.ErrClosed)
	}

	msgs, err := store.ListMessages(ctx, c.db, requestID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}

	return &ChatView{
		RequestID: requestID,
		Messages:  msgs,
		ReadOnly:  item.Status != model.ItemStatusActive || req.Status != model.RequestStatusAccepted,
	}, nil
}

// parties loads a request and its item and checks that userID is the
// claimant or the owner.
func (c *ChatChannel) parties(ctx context.Context, q store.DBTX, requestID, userID int64) (*model.ClaimRequest, *model.Item, error) {
	req, err := getRequest(ctx, q, requestID)
	if err != nil {
		return nil, nil, err
	}
	item, err := getItem(ctx, q, req.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if userID != req.ClaimantID && userID != item.OwnerID {
		return nil, nil, fmt.Errorf("request %d: not a party to this chat: %w", requestID, model.ErrForbidden)
	}
	return req, item, nil
}
