package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type friendHandler struct {
	friends FriendService
}

type friendRequestBody struct {
	Username string `json:"username"`
}

func (h friendHandler) list(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friends.ListFriends(r.Context(), accountID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friends)
}

func (h friendHandler) pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friends.PendingRequests(r.Context(), accountID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

func (h friendHandler) send(w http.ResponseWriter, r *http.Request) {
	var body friendRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}

	request, err := h.friends.SendRequest(r.Context(), accountID(r.Context()), body.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, request)
}

func (h friendHandler) accept(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	if err := h.friends.Accept(r.Context(), accountID(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h friendHandler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	if err := h.friends.Reject(r.Context(), accountID(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request id"})
		return uuid.Nil, false
	}
	return id, true
}
