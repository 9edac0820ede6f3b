package payslipshandler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payledger/internal/domain/ledger"
	"payledger/internal/domain/notify"
	"payledger/internal/domain/payslip"
	"payledger/internal/transport/http/api"
	"payledger/internal/transport/http/middleware"
)

// Handler serves published payslips. Employees see only their own; admins
// can browse any run's slips.
type Handler struct {
	Store       *ledger.Store
	CompanyName string
}

func NewHandler(store *ledger.Store, companyName string) *Handler {
	return &Handler{Store: store, CompanyName: companyName}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payslips", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", h.handleList)
		r.Get("/{payslipID}", h.handleGet)
		r.Get("/{payslipID}/download", h.handleDownload)
		r.Get("/{payslipID}/share", h.handleShare)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var (
		slips []ledger.Payslip
		err   error
	)
	if runID := r.URL.Query().Get("runId"); runID != "" && user.IsAdmin() {
		slips, err = h.Store.ListPayslips(r.Context(), runID)
	} else {
		slips, err = h.Store.ListPayslipsByEmail(r.Context(), user.Email)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslips_list_failed", "failed to list payslips", middleware.GetRequestID(r.Context()))
		return
	}
	if slips == nil {
		slips = []ledger.Payslip{}
	}
	api.Success(w, slips, middleware.GetRequestID(r.Context()))
}

// slip loads the payslip and enforces that non-admin callers only reach
// their own slips.
func (h *Handler) slip(w http.ResponseWriter, r *http.Request) (*ledger.Payslip, bool) {
	user, _ := middleware.GetUser(r.Context())

	slip, err := h.Store.GetPayslip(r.Context(), chi.URLParam(r, "payslipID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	if !user.IsAdmin() && !strings.EqualFold(slip.Email, user.Email) {
		api.Fail(w, http.StatusForbidden, "forbidden", "you can only access your own payslips", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return slip, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.slip(w, r)
	if !ok {
		return
	}
	api.Success(w, slip, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.slip(w, r)
	if !ok {
		return
	}
	pdf, err := payslip.Render(slip, h.CompanyName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s-%s.pdf", slip.EmployeeID, slip.ID))
	w.Write(pdf)
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.slip(w, r)
	if !ok {
		return
	}
	message := notify.WhatsAppMessage(slip.Name, slip.PeriodLabel, slip.Currency, slip.Net)
	api.Success(w, map[string]string{
		"message": message,
		"link":    notify.WhatsAppLink(r.URL.Query().Get("phone"), message),
	}, middleware.GetRequestID(r.Context()))
}
