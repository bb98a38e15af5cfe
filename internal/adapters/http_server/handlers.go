package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"qrate/internal/app"
	"qrate/internal/domain"
)

type Handlers struct {
	Catalog     *app.CatalogService
	Reviews     *app.ReviewService
	Auth        *app.AuthService
	Pipeline    *app.WritePipeline
	Limiter     domain.RateLimiter // optional
	FrontendURL string
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(RateLimit(h.Limiter, "register")).Post("/register", h.register)
			r.With(RateLimit(h.Limiter, "login")).Post("/login", h.login)
			r.Get("/verify/{token}", h.verify)
		})

		h.mountCatalog(r, "/courses", domain.KindCourse)
		h.mountCatalog(r, "/professors", domain.KindProfessor)
		h.mountReviews(r, "/reviews", domain.KindCourse)
		h.mountReviews(r, "/professor-reviews", domain.KindProfessor)
	})
}

func (h *Handlers) mountCatalog(r chi.Router, path string, kind domain.EntityKind) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.listEntities(kind))
		r.Get("/{id}", h.getEntity(kind))
	})
}

func (h *Handlers) mountReviews(r chi.Router, path string, kind domain.EntityKind) {
	r.Route(path, func(r chi.Router) {
		r.Get("/search", h.searchReviews(kind))
		r.Get("/{id}", h.getReview(kind))
		r.With(RequireVerifiedClean(h.Pipeline)).Post("/", h.createReview(kind))
		r.With(RequireVerifiedClean(h.Pipeline)).Put("/{id}", h.updateReview(kind))
		r.With(RequireVerified(h.Pipeline.Gate())).Delete("/{id}", h.deleteReview(kind))
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers 304 when the client already holds this representation.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeError(w, domain.ErrInternal)
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) listEntities(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out, err := h.Catalog.List(r.Context(), kind, app.ParsePage(q.Get("page"), q.Get("limit")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeCacheable(w, r, out)
	}
}

func (h *Handlers) getEntity(kind domain.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.Catalog.Get(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeCacheable(w, r, out)
	}
}
