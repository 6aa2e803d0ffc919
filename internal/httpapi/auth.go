package httpapi

import (
	"net/http"

	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/services"
)

type authHandler struct {
	auth AuthService
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Platform string `json:"platform"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

func (h authHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.SignUp(r.Context(), services.SignUpRequest(req))
	if err != nil {
		logging.FromContext(r.Context()).Info("signup rejected", "error", err)
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h authHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.SignIn(r.Context(), req.Email, req.Password, req.Platform)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.Refresh(r.Context(), bearerToken(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h authHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// signOutAll ends every session of the token's account.
func (h authHandler) signOutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOutAll(r.Context(), bearerToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
