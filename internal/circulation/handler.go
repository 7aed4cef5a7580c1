package circulation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"biblios/internal/apperror"
	"biblios/internal/platform/httpx"
)

// Handler exposes the circulation service over HTTP.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the circulation routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/loans", h.handleCreateLoan)
	r.Get("/loans/overdue", h.handleOverdueLoans)
	r.Get("/loans/{id}", h.handleGetLoan)
	r.Post("/loans/{id}/return", h.handleReturnLoan)
	r.Get("/readers/{id}/loans", h.handleLoansForReader)
	r.Get("/readers/{id}/active-loans", h.handleActiveLoansForReader)

	r.Post("/reservations", h.handleCreateReservation)
	r.Get("/reservations/expired", h.handleExpiredReservations)
	r.Get("/reservations/book/{id}", h.handleReservationsForBook)
	r.Post("/reservations/{id}/fulfill", h.handleFulfillReservation)
	r.Patch("/reservations/{id}", h.handleUpdateReservation)
	r.Delete("/reservations/{id}", h.handleDeleteReservation)
}

func (h *Handler) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var params CreateLoanParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("loan", "malformed request body"))
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loan)
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("loan", "invalid loan id"))
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("loan", "invalid loan id"))
		return
	}

	var body struct {
		FineAmount float64 `json:"fine_amount"`
	}
	if r.ContentLength > 0 {
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, apperror.Invalid("loan", "malformed request body"))
			return
		}
	}

	loan, err := h.service.ReturnLoan(r.Context(), id, body.FineAmount)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) handleOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.OverdueLoans(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loans)
}

func (h *Handler) handleLoansForReader(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reader", "invalid reader id"))
		return
	}

	loans, err := h.service.LoansForReader(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loans)
}

func (h *Handler) handleActiveLoansForReader(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reader", "invalid reader id"))
		return
	}

	loans, err := h.service.ActiveLoansForReader(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loans)
}

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var params CreateReservationParams
	if err := httpx.Decode(r, &params); err != nil {
		httpx.Error(w, apperror.Invalid("reservation", "malformed request body"))
		return
	}

	reservation, created, err := h.service.CreateReservation(r.Context(), params)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	status := http.StatusOK // existing reservation returned unchanged
	if created {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, reservation)
}

func (h *Handler) handleReservationsForBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("book", "invalid book id"))
		return
	}

	reservations, err := h.service.ActiveReservationsForBook(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reservations)
}

func (h *Handler) handleFulfillReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reservation", "invalid reservation id"))
		return
	}

	reservation, err := h.service.FulfillReservation(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reservation)
}

func (h *Handler) handleExpiredReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.service.ExpiredReservations(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reservations)
}

func (h *Handler) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reservation", "invalid reservation id"))
		return
	}

	var patch ReservationPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.Error(w, apperror.Invalid("reservation", "malformed request body"))
		return
	}

	reservation, err := h.service.UpdateReservation(r.Context(), id, patch)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reservation)
}

func (h *Handler) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, apperror.Invalid("reservation", "invalid reservation id"))
		return
	}

	if err := h.service.DeleteReservation(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
