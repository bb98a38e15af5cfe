package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"qrate/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    domain.AccountView `json:"user"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully. Please check your email to verify your account.",
		Token:   res.Token,
		User:    res.Account.View(),
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: "Login successful", Token: res.Token, User: res.Account.View()})
}

// verify always redirects to the frontend; the outcome travels in the query.
func (h *Handlers) verify(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(h.FrontendURL, "/")
	if err := h.Auth.Verify(r.Context(), chi.URLParam(r, "token")); err != nil {
		http.Redirect(w, r, base+"/sign-in?error=verification_failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, base+"/?verified=true", http.StatusFound)
}
