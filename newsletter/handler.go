package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pthm-cable/heroflow/config"
)

// Fetcher returns the latest post.
type Fetcher interface {
	Latest(ctx context.Context) (Post, error)
}

// Handler serves the latest post as JSON.
type Handler struct {
	fetcher      Fetcher
	cacheControl string
}

// NewHandler creates the latest-post endpoint.
func NewHandler(fetcher Fetcher, cfg config.NewsletterConfig) *Handler {
	return &Handler{
		fetcher:      fetcher,
		cacheControl: fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", cfg.CacheMaxAge, cfg.StaleWhileRevalidate),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	post, err := h.fetcher.Latest(r.Context())
	switch {
	case errors.Is(err, ErrNoPosts):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No posts found"})
	case err != nil:
		slog.Error("latest post failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to fetch latest post"})
	default:
		w.Header().Set("Cache-Control", h.cacheControl)
		writeJSON(w, http.StatusOK, post)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
