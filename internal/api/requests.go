package api

import (
	"net/http"

	"github.com/erazemk/reclaim/internal/exchange"
)

// RequestsHandler handles the inbox, decisions and chat of claim requests.
type RequestsHandler struct {
	Exchange *exchange.Coordinator
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

// Inbox handles GET /api/requests.
func (h *RequestsHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Exchange.Inbox(r.Context(), actorID(r))
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(entries))
}

// Accept handles POST /api/requests/{id}/accept.
func (h *RequestsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	d, err := h.Exchange.Accept(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// Reject handles POST /api/requests/{id}/reject.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Exchange.Reject(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Messages handles GET /api/requests/{id}/messages. Clients poll it.
func (h *RequestsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	chat, err := h.Exchange.ChatHistory(r.Context(), actorID(r), id)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	jsonResponse(w, http.StatusOK, chat)
}

// SendMessage handles POST /api/requests/{id}/messages.
func (h *RequestsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Exchange.SendMessage(r.Context(), actorID(r), id, req.Body)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, msg)
}
