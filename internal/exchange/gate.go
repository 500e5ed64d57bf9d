package exchange

import "github.com/erazemk/reclaim/internal/model"

// Reveal decides what viewerID may see of item given the viewer's request on
// it, if any. Only the owner and a claimant whose request on this item was
// accepted see the private fields. The result depends on the current request
// status, so it must be computed on every read.
func Reveal(viewerID int64, item *model.Item, req *model.ClaimRequest) model.Disclosure {
	full := viewerID == item.OwnerID ||
		(req != nil &&
			req.ItemID == item.ID &&
			req.ClaimantID == viewerID &&
			req.Status == model.RequestStatusAccepted)

	return model.Disclosure{ShowFull: full, ShowContact: full}
}

// Redact returns a copy of item with the fields d does not allow blanked.
func Redact(item model.Item, d model.Disclosure) model.Item {
	if !d.ShowFull {
		item.Description = ""
		item.ImageRef = ""
	}
	if !d.ShowContact {
		item.Contact = ""
	}
	return item
}
