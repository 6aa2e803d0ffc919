package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/alert"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/push"
)

type pushHandler struct {
	auth  AuthService
	relay PushRelay
}

type pushTokenBody struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type relayResponse struct {
	Success    bool            `json:"success"`
	PushResult json.RawMessage `json:"pushResult,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func (h pushHandler) register(w http.ResponseWriter, r *http.Request) {
	var body pushTokenBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Token == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	if err := h.auth.RegisterPushToken(r.Context(), accountID(r.Context()), body.Token, body.Platform); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h pushHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.ClearPushToken(r.Context(), accountID(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendPeepNotification relays one peep on demand. Callers may only send as
// themselves; a missing target token is reported in the body, not as an
// HTTP failure.
func (h pushHandler) sendPeepNotification(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		respondJSON(w, http.StatusServiceUnavailable, relayResponse{Error: "push relay unavailable"})
		return
	}

	var payload push.Payload
	if !decodeJSON(w, r, &payload) {
		return
	}

	caller := accountID(r.Context())
	if payload.FromUserID == uuid.Nil {
		payload.FromUserID = caller
	}
	if payload.FromUserID != caller {
		respondJSON(w, http.StatusForbidden, relayResponse{Error: "cannot send as another user"})
		return
	}
	if payload.ToUserID == uuid.Nil {
		respondJSON(w, http.StatusBadRequest, relayResponse{Error: "to_user_id is required"})
		return
	}

	result, err := h.relay.NotifyPeep(r.Context(), payload)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, relayResponse{Success: true, PushResult: result})
	case errors.Is(err, push.ErrNoPushToken):
		respondJSON(w, http.StatusOK, relayResponse{Error: alert.Message(err)})
	default:
		logging.FromContext(r.Context()).Error("push relay failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, relayResponse{Error: "push delivery failed"})
	}
}
