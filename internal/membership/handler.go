package membership

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"biblios/internal/apperror"
	"biblios/internal/platform/httpx"
)

// Handler exposes the membership service over HTTP.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the membership routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/readers", h.handleListReaders)
	r.Post("/readers", h.handleCreateReader)
	r.Get("/readers/card/{card}", h.handleGetReaderByCard)
	r.Get("/readers/{id}", h.handleGetReader)
	r.Post("/librarians", h.handleCreateLibrarian)
	r.Post("/librarians/login", h.handleLogin)
	r.Get("/librarians/{id}", h.handleGetLibrarian)
}

func (h *Handler) handleListReaders(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	readers, err := h.service.ListReaders(r.Context(), skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, readers)
}

func (h *Handler) handleGetReader(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reader", "invalid reader id"))
		return
	}

	reader, err := h.service.GetReader(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reader)
}

func (h *Handler) handleGetReaderByCard(w http.ResponseWriter, r *http.Request) {
	reader, err := h.service.GetReaderByCardNumber(r.Context(), chi.URLParam(r, "card"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reader)
}

func (h *Handler) handleCreateReader(w http.ResponseWriter, r *http.Request) {
	var params CreateReaderParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("reader", "malformed request body"))
		return
	}

	reader, err := h.service.CreateReader(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reader)
}

func (h *Handler) handleCreateLibrarian(w http.ResponseWriter, r *http.Request) {
	var params CreateLibrarianParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("librarian", "malformed request body"))
		return
	}

	librarian, err := h.service.CreateLibrarian(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, librarian)
}

func (h *Handler) handleGetLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("librarian", "invalid librarian id"))
		return
	}

	librarian, err := h.service.GetLibrarian(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, librarian)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		EmployeeNumber string `json:"employee_number"`
		Password       string `json:"password"`
	}
	if err := httpx.Decode(r, &creds); err != nil {
		httpx.Error(w, apperror.Invalid("librarian", "malformed request body"))
		return
	}

	librarian, err := h.service.Authenticate(r.Context(), creds.EmployeeNumber, creds.Password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInvalid {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, librarian)
}
