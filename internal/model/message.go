package model

import "time"

// Message is one chat line in the channel of an accepted claim request.
type Message struct {
	ID         int64     `json:"id"`
	RequestID  int64     `json:"request_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// ItemEvent is an append-only audit record of a workflow transition.
type ItemEvent struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	RequestID *int64    `json:"request_id,omitempty"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Audit actions.
const (
	EventItemReported      = "item_reported"
	EventClaimSubmitted    = "claim_submitted"
	EventClaimAccepted     = "claim_accepted"
	EventClaimRejected     = "claim_rejected"
	EventClaimAutoRejected = "claim_auto_rejected"
	EventItemReturned      = "item_returned"
)
