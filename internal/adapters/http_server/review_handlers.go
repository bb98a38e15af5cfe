package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrate/internal/domain"
)

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func (h *Handlers) createReview(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := domain.AccountFrom(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		var payload map[string]any
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}
		sub, _, err := parseSubmission(kind, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		rv, err := h.Reviews.Submit(r.Context(), kind, acc, sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, statusResponse{Status: "success", ID: rv.ID})
	}
}

func (h *Handlers) getReview(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rv, err := h.Reviews.Get(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rv)
	}
}

func (h *Handlers) searchReviews(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, err := h.Reviews.Search(r.Context(), kind, r.URL.Query().Get(searchParams[kind]))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rs)
	}
}

func (h *Handlers) updateReview(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := domain.AccountFrom(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		var payload map[string]any
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}
		sub, version, err := parseSubmission(kind, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.Reviews.Update(r.Context(), kind, chi.URLParam(r, "id"), acc, sub, version); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
	}
}

func (h *Handlers) deleteReview(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := domain.AccountFrom(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		if err := h.Reviews.Delete(r.Context(), kind, chi.URLParam(r, "id"), acc); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
	}
}
