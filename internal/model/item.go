package model

import "time"

// ItemKind says whether an item was reported lost or found.
type ItemKind string

// Item kinds.
const (
	ItemKindLost  ItemKind = "lost"
	ItemKindFound ItemKind = "found"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == ItemKindLost || k == ItemKindFound
}

// ItemStatus is the lifecycle state of an item. It only moves Active -> Returned.
type ItemStatus string

// Item statuses.
const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusReturned ItemStatus = "returned"
)

// Item is a lost or found report. Description, ImageRef and Contact are private
// fields that are only disclosed to the owner and an accepted claimant.
type Item struct {
	ID                int64      `json:"id"`
	OwnerID           int64      `json:"owner_id"`
	Kind              ItemKind   `json:"kind"`
	Status            ItemStatus `json:"status"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	Date              string     `json:"date"`
	Description       string     `json:"description,omitempty"`
	Contact           string     `json:"contact,omitempty"`
	ImageRef          string     `json:"image_ref,omitempty"`
	ReturnedRequestID *int64     `json:"returned_request_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ItemFilter narrows an item listing. Zero values mean "any".
type ItemFilter struct {
	Status  ItemStatus
	Kind    ItemKind
	OwnerID int64
	Query   string
}

// ItemInput carries the owner-supplied fields of a new report.
type ItemInput struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	ImageRef    string `json:"image_ref"`
}

// Disclosure is what a viewer may see of an item.
type Disclosure struct {
	ShowFull    bool `json:"show_full"`
	ShowContact bool `json:"show_contact"`
}
