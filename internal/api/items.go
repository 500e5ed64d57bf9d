package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/reclaim/internal/exchange"
	"github.com/erazemk/reclaim/internal/model"
)

// ItemsHandler handles item reports and the claims filed against them.
type ItemsHandler struct {
	Exchange *exchange.Coordinator
}

type createItemRequest struct {
	Kind model.ItemKind `json:"kind"`
	model.ItemInput
}

type submitClaimRequest struct {
	Message  string `json:"message"`
	ProofRef string `json:"proof_ref"`
}

// List handles GET /api/items.
//
// section=active|previous selects active or returned items (default active),
// kind=lost|found narrows by kind, q searches name, location and description,
// and mine=true keeps only the caller's own reports.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := model.ItemFilter{Query: strings.TrimSpace(query.Get("q"))}

	switch query.Get("section") {
	case "", "active":
		filter.Status = model.ItemStatusActive
	case "previous":
		filter.Status = model.ItemStatusReturned
	default:
		jsonError(w, http.StatusBadRequest, "section must be active or previous")
		return
	}

	if kind := model.ItemKind(query.Get("kind")); kind != "" {
		if !kind.Valid() {
			jsonError(w, http.StatusBadRequest, "kind must be lost or found")
			return
		}
		filter.Kind = kind
	}

	if query.Get("mine") == "true" {
		filter.OwnerID = actorID(r)
	}

	views, err := h.Exchange.Browse(r.Context(), actorID(r), filter)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(views))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Exchange.ReportItem(r.Context(), actorID(r), req.Kind, req.ItemInput)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	view, err := h.Exchange.ViewItem(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

// MarkReturned handles POST /api/items/{id}/return.
func (h *ItemsHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Exchange.MarkReturned(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListRequests handles GET /api/items/{id}/requests.
func (h *ItemsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	reqs, err := h.Exchange.ItemRequests(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(reqs))
}

// SubmitClaim handles POST /api/items/{id}/requests.
func (h *ItemsHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req submitClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Exchange.SubmitClaim(r.Context(), actorID(r), id, req.Message, req.ProofRef)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// History handles GET /api/items/{id}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	events, err := h.Exchange.ItemHistory(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(events))
}
