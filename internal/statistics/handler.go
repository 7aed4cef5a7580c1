package statistics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"biblios/internal/platform/httpx"
)

// Handler exposes the statistics service over HTTP.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the statistics routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/statistics", h.handleSnapshot)
	r.Get("/statistics/popular-books", h.handlePopularBooks)
	r.Get("/statistics/active-readers", h.handleActiveReaders)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) handlePopularBooks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	books, err := h.service.PopularBooks(r.Context(), limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) handleActiveReaders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	readers, err := h.service.ActiveReaders(r.Context(), limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, readers)
}
