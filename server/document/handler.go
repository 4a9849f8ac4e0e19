package document

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/frusdelion/crocodoc/pkg/auth"
	"github.com/frusdelion/crocodoc/pkg/auth/static"

	"github.com/go-chi/chi/v5"
)

// Handler serves an in-memory rendition of the Document API. Documents
// advance one state per status poll: QUEUED, PROCESSING, DONE.
type Handler struct {
	authorizer auth.Provider

	mu        sync.Mutex
	documents map[string]*document
}

type document struct {
	UUID string

	URL  string
	Name string
	Size int64

	Status   string
	Viewable bool
}

type Option func(*Handler)

func WithToken(token string) Option {
	return func(h *Handler) {
		h.authorizer, _ = static.New(token)
	}
}

func WithAuthorizer(p auth.Provider) Option {
	return func(h *Handler) {
		h.authorizer = p
	}
}

func New(options ...Option) *Handler {
	h := &Handler{
		documents: make(map[string]*document),
	}

	for _, option := range options {
		option(h)
	}

	return h
}

func (h *Handler) Attach(r chi.Router) {
	r.Route("/document", func(r chi.Router) {
		r.Use(h.authorize)

		r.Post("/upload", h.handleUpload)
		r.Get("/status", h.handleStatus)
		r.Post("/delete", h.handleDelete)
	})
}

func (h *Handler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authorizer == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx, err := h.authorizer.Authenticate(r.Context(), r)

		if err != nil {
			writeStatus(w, http.StatusUnauthorized, errorResponse{Error: "invalid_token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJson(w http.ResponseWriter, v any) {
	writeStatus(w, http.StatusOK, v)
}

func writeStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}
