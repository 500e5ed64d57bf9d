package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/reclaim/internal/model"
)

// OpenChannel creates the chat channel of a request. Opening an existing
// channel is a no-op.
func OpenChannel(ctx context.Context, q DBTX, requestID int64, openedAt time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_channels (request_id, opened_at) VALUES (?, ?)`,
		requestID, toMillis(openedAt),
	)
	if err != nil {
		return fmt.Errorf("opening chat channel: %w", err)
	}
	return nil
}

// ChannelExists reports whether the request has an open chat channel.
func ChannelExists(ctx context.Context, q DBTX, requestID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_channels WHERE request_id = ?`, requestID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking chat channel: %w", err)
	}
	return count > 0, nil
}

// LastMessageTime returns the send time of the newest message in a channel,
// or the zero time when the channel is empty.
func LastMessageTime(ctx context.Context, q DBTX, requestID int64) (time.Time, error) {
	var last int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sent_at), 0) FROM messages WHERE request_id = ?`, requestID,
	).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last message time: %w", err)
	}
	if last == 0 {
		return time.Time{}, nil
	}
	return fromMillis(last), nil
}

// CreateMessage appends a message to a channel.
func CreateMessage(ctx context.Context, q DBTX, requestID, senderID int64, body string, sentAt time.Time) (*model.Message, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO messages (request_id, sender_id, body, sent_at) VALUES (?, ?, ?, ?)`,
		requestID, senderID, body, toMillis(sentAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}

	return &model.Message{
		ID:        id,
		RequestID: requestID,
		SenderID:  senderID,
		Body:      body,
		SentAt:    fromMillis(toMillis(sentAt)),
	}, nil
}

// ListMessages returns the messages of a channel, oldest first, with sender
// names when the sender is a known user.
func ListMessages(ctx context.Context, q DBTX, requestID int64) ([]model.Message, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT m.id, m.request_id, m.sender_id, COALESCE(u.name, ''), m.body, m.sent_at
		 FROM messages m
		 LEFT JOIN users u ON u.id = m.sender_id
		 WHERE m.request_id = ?
		 ORDER BY m.id`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var sentAt int64
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &m.SenderName, &m.Body, &sentAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.SentAt = fromMillis(sentAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
