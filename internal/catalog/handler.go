package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"biblios/internal/apperror"
	"biblios/internal/platform/httpx"
)

// Handler exposes the catalog service over HTTP.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the catalog routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/books", h.handleListBooks)
	r.Post("/books", h.handleCreateBook)
	r.Get("/books/search/{query}", h.handleSearchBooks)
	r.Get("/books/isbn/{isbn}", h.handleGetBookByISBN)
	r.Get("/books/{id}", h.handleGetBook)
	r.Get("/books/{id}/copies", h.handleListCopies)
	r.Get("/books/{id}/available", h.handleListAvailableCopies)
	r.Post("/books/{id}/copies", h.handleAddCopy)
	r.Get("/copies/inventory/{number}", h.handleGetCopyByInventoryNumber)
	r.Get("/authors/{id}/books", h.handleListBooksByAuthor)
	r.Post("/authors", h.handleCreateAuthor)
	r.Post("/publishers", h.handleCreatePublisher)
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	books, err := h.service.ListBooks(r.Context(), skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("book", "invalid book id"))
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) handleGetBookByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBookByISBN(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) handleGetCopyByInventoryNumber(w http.ResponseWriter, r *http.Request) {
	copy, err := h.service.GetCopyByInventoryNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, copy)
}

func (h *Handler) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	books, err := h.service.SearchBooks(r.Context(), query)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var params CreateBookParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("book", "malformed request body"))
		return
	}

	book, err := h.service.CreateBook(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) handleListCopies(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("book", "invalid book id"))
		return
	}

	copies, err := h.service.ListCopies(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, copies)
}

func (h *Handler) handleListAvailableCopies(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("book", "invalid book id"))
		return
	}

	copies, err := h.service.ListAvailableCopies(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, copies)
}

func (h *Handler) handleAddCopy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("book", "invalid book id"))
		return
	}

	var params AddCopyParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("copy", "malformed request body"))
		return
	}
	params.BookID = id

	copy, err := h.service.AddCopy(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, copy)
}

func (h *Handler) handleListBooksByAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("author", "invalid author id"))
		return
	}

	books, err := h.service.ListBooksByAuthor(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

func (h *Handler) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var params CreateAuthorParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("author", "malformed request body"))
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, author)
}

func (h *Handler) handleCreatePublisher(w http.ResponseWriter, r *http.Request) {
	var params CreatePublisherParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("publisher", "malformed request body"))
		return
	}

	publisher, err := h.service.CreatePublisher(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, publisher)
}
