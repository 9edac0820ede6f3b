package employeeshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"payledger/internal/domain/ledger"
	"payledger/internal/transport/http/api"
	"payledger/internal/transport/http/middleware"
)

// Handler serves the master employee database that survives between runs.
type Handler struct {
	Store *ledger.Store
}

func NewHandler(store *ledger.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireAdmin).Get("/employees", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	if records == nil {
		records = []*ledger.Record{}
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}
