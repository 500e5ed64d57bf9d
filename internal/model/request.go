package model

import "time"

// RequestStatus is the state of a claim request.
type RequestStatus string

// Claim request statuses. Accepted and rejected are never left again.
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// Active reports whether the request still counts against the one-per-claimant limit.
func (s RequestStatus) Active() bool {
	return s == RequestStatusPending || s == RequestStatusAccepted
}

// Decision is the owner's answer to a pending claim.
type Decision string

// Decisions.
const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Status returns the request status a decision leads to.
func (d Decision) Status() (RequestStatus, bool) {
	switch d {
	case DecisionAccept:
		return RequestStatusAccepted, true
	case DecisionReject:
		return RequestStatusRejected, true
	}
	return "", false
}

// ClaimRequest is a non-owner's bid to be verified as the rightful party for an item.
type ClaimRequest struct {
	ID         int64         `json:"id"`
	ItemID     int64         `json:"item_id"`
	ClaimantID int64         `json:"claimant_id"`
	Message    string        `json:"message"`
	ProofRef   string        `json:"proof_ref,omitempty"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	DecidedAt  *time.Time    `json:"decided_at,omitempty"`
}

// Role is how a user relates to a request in their inbox.
type Role string

// Inbox roles.
const (
	RoleSent     Role = "sent"
	RoleReceived Role = "received"
)

// InboxEntry is one row of a user's unified request inbox.
type InboxEntry struct {
	Request    ClaimRequest `json:"request"`
	Role       Role         `json:"role"`
	ItemName   string       `json:"item_name"`
	ItemStatus ItemStatus   `json:"item_status"`
	OwnerID    int64        `json:"owner_id"`
}
