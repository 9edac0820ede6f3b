package runshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"payledger/internal/domain/audit"
	"payledger/internal/domain/ledger"
	"payledger/internal/domain/notify"
	"payledger/internal/domain/payroll"
	"payledger/internal/domain/reports"
	"payledger/internal/platform/metrics"
	"payledger/internal/transport/http/api"
	"payledger/internal/transport/http/middleware"
	"payledger/internal/transport/http/shared"
)

type Handler struct {
	Store     *ledger.Store
	Audit     *audit.Service
	Metrics   *metrics.Collector
	Mailer    notify.Mailer
	Cfg       payroll.Config
	EmailFrom string
}

func NewHandler(store *ledger.Store, auditSvc *audit.Service, collector *metrics.Collector, mailer notify.Mailer, cfg payroll.Config, emailFrom string) *Handler {
	return &Handler{Store: store, Audit: auditSvc, Metrics: collector, Mailer: mailer, Cfg: cfg, EmailFrom: emailFrom}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/runs", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/", h.handleListRuns)
		r.Post("/", h.handleCreateRun)
		r.Get("/template", h.handleTemplate)
		r.Get("/presets", h.handlePresets)

		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/", h.handleGetRun)
			r.Delete("/", h.handleDeleteRun)
			r.Post("/import", h.handleImport)
			r.Post("/records", h.handleAddRecord)
			r.Patch("/records/{recordID}", h.handleUpdateField)
			r.Delete("/records/{recordID}", h.handleDeleteRecord)
			r.Post("/columns", h.handleAddColumn)
			r.Post("/tax", h.handleApplyTax)
			r.Post("/overtime", h.handleBulkOvertime)
			r.Post("/load-master", h.handleLoadMaster)
			r.Post("/sync-master", h.handleSyncMaster)
			r.Post("/publish", h.handlePublish)
			r.Get("/export", h.handleExportCSV)
			r.Get("/register", h.handleExportRegister)
		})
	})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*ledger.Run, bool) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return run, true
}

func (h *Handler) draftRun(w http.ResponseWriter, r *http.Request) (*ledger.Run, bool) {
	run, ok := h.run(w, r)
	if !ok {
		return nil, false
	}
	if run.Status != ledger.RunStatusDraft {
		api.Fail(w, http.StatusConflict, "run_published", "payroll run is published and read-only", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return run, true
}

func (h *Handler) audited(r *http.Request, action, entityType, entityID string, after any) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.Email, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

type runListItem struct {
	*ledger.Run
	Totals *ledger.Totals `json:"totals,omitempty"`
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "runs_list_failed", "failed to list runs", middleware.GetRequestID(r.Context()))
		return
	}
	totals, err := h.Store.PublishedTotals(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "runs_list_failed", "failed to total runs", middleware.GetRequestID(r.Context()))
		return
	}

	items := make([]runListItem, 0, len(runs))
	for _, run := range runs {
		item := runListItem{Run: run}
		if t, ok := totals[run.ID]; ok {
			item.Totals = &t
		}
		items = append(items, item)
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

type createRunPayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var payload createRunPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Month < 0 || payload.Month > 11 || payload.Year < 2000 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "month must be 0-11 and year a full year", middleware.GetRequestID(r.Context()))
		return
	}

	period := ledger.Period{Month: payload.Month, Year: payload.Year}
	if _, err := h.Store.GetRunByPeriod(r.Context(), period); err == nil {
		api.Fail(w, http.StatusConflict, "run_exists", "a run already exists for this period", middleware.GetRequestID(r.Context()))
		return
	}

	run, err := h.Store.CreateRun(r.Context(), period, ledger.DefaultSchema())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "run_create_failed", "failed to create run", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "run.create", "payroll_run", run.ID, payload)
	api.Created(w, run, middleware.GetRequestID(r.Context()))
}

type recordView struct {
	RecordID string         `json:"recordId"`
	Data     *ledger.Record `json:"data"`
	Totals   ledger.Totals  `json:"totals"`
	Prorated bool           `json:"prorated"`
}

func (h *Handler) recordViews(records []ledger.StoredRecord, run *ledger.Run) ([]recordView, ledger.Totals) {
	views := make([]recordView, 0, len(records))
	var runTotals ledger.Totals
	for _, stored := range records {
		totals := ledger.Aggregate(stored.Record, run.Schema)
		runTotals.GrossEarnings += totals.GrossEarnings
		runTotals.TotalDeductions += totals.TotalDeductions
		runTotals.NetPay += totals.NetPay
		views = append(views, recordView{
			RecordID: stored.RowID,
			Data:     stored.Record,
			Totals:   totals,
			Prorated: stored.Record.Prorated(h.Cfg),
		})
	}
	return views, runTotals
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "run_load_failed", "failed to load run records", middleware.GetRequestID(r.Context()))
		return
	}
	views, totals := h.recordViews(records, run)
	api.Success(w, map[string]any{
		"run":     run,
		"records": views,
		"totals":  totals,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteRun(r.Context(), run.ID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "run_delete_failed", "failed to delete run", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "run.delete", "payroll_run", run.ID, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleImport replaces the run's records with the uploaded salary sheet and
// merges any new columns the sheet introduced into the run schema.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}

	res, err := ledger.Import(r.Body, run.Schema, h.Cfg)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "import_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.ClearRecords(r.Context(), run.ID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to clear existing records", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.InsertRecords(r.Context(), run.ID, res.Records); err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to store records", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateRunSchema(r.Context(), run.ID, res.Schema); err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to update schema", middleware.GetRequestID(r.Context()))
		return
	}

	h.Metrics.AddImportedRecords(len(res.Records))
	h.audited(r, "run.import", "payroll_run", run.ID, map[string]int{"records": len(res.Records), "skippedRows": res.Skipped})
	api.Success(w, map[string]any{
		"imported":    len(res.Records),
		"skippedRows": res.Skipped,
		"schema":      res.Schema,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=salary-sheet-template.csv")
	if err := ledger.Template(w); err != nil {
		slog.Warn("template write failed", "err", err)
	}
}

func (h *Handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]any{
		"entitlements": ledger.PresetEntitlements,
		"deductions":   ledger.PresetDeductions,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	rec := ledger.NewRecord(h.Cfg)
	if err := h.Store.InsertRecords(r.Context(), run.ID, []*ledger.Record{rec}); err != nil {
		api.Fail(w, http.StatusInternalServerError, "record_create_failed", "failed to add record", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "record.create", "run_record", rec.ID, nil)
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

type updateFieldPayload struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// rawValue renders the incoming JSON value the way a spreadsheet cell would
// hold it, so numeric and string edits go through one parsing path.
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(string(raw))
}

func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}

	var payload updateFieldPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Field == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "field and value required", middleware.GetRequestID(r.Context()))
		return
	}

	recordID := chi.URLParam(r, "recordID")
	rec, err := h.Store.GetRecord(r.Context(), run.ID, recordID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}

	ledger.UpdateField(rec, run.Schema, h.Cfg, payload.Field, rawValue(payload.Value))
	if payload.Field == "workedDays" {
		h.audited(r, "record.prorate", "run_record", rec.ID, map[string]float64{"workedDays": rec.WorkedDays})
	}

	if err := h.Store.SaveRecord(r.Context(), run.ID, recordID, rec); err != nil {
		api.Fail(w, http.StatusInternalServerError, "record_update_failed", "failed to save record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, recordView{
		RecordID: recordID,
		Data:     rec,
		Totals:   ledger.Aggregate(rec, run.Schema),
		Prorated: rec.Prorated(h.Cfg),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	recordID := chi.URLParam(r, "recordID")
	if err := h.Store.DeleteRecord(r.Context(), run.ID, recordID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "record_delete_failed", "failed to delete record", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "record.delete", "run_record", recordID, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type addColumnPayload struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

func (h *Handler) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}

	var payload addColumnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Label) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "column label required", middleware.GetRequestID(r.Context()))
		return
	}
	kind := ledger.Entitlement
	if strings.EqualFold(payload.Type, string(ledger.Deduction)) {
		kind = ledger.Deduction
	}

	schema := run.Schema
	col, err := schema.Add(strings.TrimSpace(payload.Label), kind)
	if err != nil {
		var dup *ledger.DuplicateColumnError
		if errors.As(err, &dup) {
			api.Fail(w, http.StatusConflict, "column_exists", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "column_create_failed", "failed to add column", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateRunSchema(r.Context(), run.ID, schema); err != nil {
		api.Fail(w, http.StatusInternalServerError, "column_create_failed", "failed to save schema", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "column.create", "payroll_run", run.ID, col)
	api.Created(w, col, middleware.GetRequestID(r.Context()))
}

// handleApplyTax applies social insurance and income tax to every record
// from its entitlement gross, adding the statutory columns when missing.
func (h *Handler) handleApplyTax(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tax_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}

	records := make([]*ledger.Record, len(stored))
	for i := range stored {
		records[i] = stored[i].Record
	}
	schema := run.Schema
	added := ledger.ApplyStatutoryDeductions(&schema, records)

	for i := range stored {
		if err := h.Store.SaveRecord(r.Context(), run.ID, stored[i].RowID, stored[i].Record); err != nil {
			api.Fail(w, http.StatusInternalServerError, "tax_failed", "failed to save records", middleware.GetRequestID(r.Context()))
			return
		}
	}
	if len(added) > 0 {
		if err := h.Store.UpdateRunSchema(r.Context(), run.ID, schema); err != nil {
			api.Fail(w, http.StatusInternalServerError, "tax_failed", "failed to save schema", middleware.GetRequestID(r.Context()))
			return
		}
	}
	h.audited(r, "run.tax", "payroll_run", run.ID, map[string]int{"records": len(records)})
	api.Success(w, map[string]any{"applied": len(records), "addedColumns": added}, middleware.GetRequestID(r.Context()))
}

type bulkOvertimePayload struct {
	Hours float64 `json:"hours"`
	Rate  float64 `json:"rate"`
}

func (h *Handler) handleBulkOvertime(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	var payload bulkOvertimePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Hours <= 0 || payload.Rate <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "hours and rate must be positive", middleware.GetRequestID(r.Context()))
		return
	}

	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}
	for i := range stored {
		ledger.ApplyOvertime(stored[i].Record, payload.Hours, payload.Rate, h.Cfg)
		if err := h.Store.SaveRecord(r.Context(), run.ID, stored[i].RowID, stored[i].Record); err != nil {
			api.Fail(w, http.StatusInternalServerError, "overtime_failed", "failed to save records", middleware.GetRequestID(r.Context()))
			return
		}
	}
	h.audited(r, "run.overtime", "payroll_run", run.ID, payload)
	api.Success(w, map[string]int{"applied": len(stored)}, middleware.GetRequestID(r.Context()))
}

// handleLoadMaster seeds the run from the master employee database, resetting
// each record to a full standard period.
func (h *Handler) handleLoadMaster(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "load_master_failed", "failed to load employees", middleware.GetRequestID(r.Context()))
		return
	}
	for _, rec := range employees {
		rec.OTDayHours, rec.OTNightHours, rec.OTHolidayHours = 0, 0, 0
		ledger.ApplyRatio(rec, run.Schema, h.Cfg.StandardDays, h.Cfg)
	}
	if err := h.Store.InsertRecords(r.Context(), run.ID, employees); err != nil {
		api.Fail(w, http.StatusInternalServerError, "load_master_failed", "failed to store records", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "run.load_master", "payroll_run", run.ID, map[string]int{"loaded": len(employees)})
	api.Success(w, map[string]int{"loaded": len(employees)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSyncMaster(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sync_master_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}
	records := make([]*ledger.Record, len(stored))
	for i := range stored {
		records[i] = stored[i].Record
	}
	saved, err := h.Store.UpsertEmployees(r.Context(), records)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sync_master_failed", "failed to save employees", middleware.GetRequestID(r.Context()))
		return
	}
	h.audited(r, "run.sync_master", "payroll_run", run.ID, map[string]int{"saved": saved})
	api.Success(w, map[string]int{"saved": saved}, middleware.GetRequestID(r.Context()))
}

// handlePublish freezes the run, writes one payslip per record, and emails
// each employee a summary. Mail failures do not roll back the publish.
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	run, ok := h.draftRun(w, r)
	if !ok {
		return
	}
	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "publish_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}
	if len(stored) == 0 {
		api.Fail(w, http.StatusBadRequest, "empty_run", "cannot publish a run with no records", middleware.GetRequestID(r.Context()))
		return
	}

	slips := make([]ledger.Payslip, 0, len(stored))
	var totals ledger.Totals
	for i := range stored {
		slip := ledger.BuildPayslip(stored[i].Record, run)
		totals.GrossEarnings += slip.Gross
		totals.TotalDeductions += slip.Deductions
		totals.NetPay += slip.Net
		slips = append(slips, slip)
	}

	if err := h.Store.PublishRun(r.Context(), run.ID, slips); err != nil {
		if errors.Is(err, ledger.ErrRunPublished) {
			api.Fail(w, http.StatusConflict, "run_published", "payroll run is already published", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "publish_failed", "failed to publish run", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.AddPublishedPayslips(len(slips))

	sent := 0
	for _, slip := range slips {
		if slip.Email == "" {
			continue
		}
		err := h.Mailer.Send(r.Context(), h.EmailFrom, slip.Email,
			notify.PayslipSubject(slip.PeriodLabel),
			notify.PayslipBody(slip.Name, slip.PeriodLabel, slip.Currency, slip.Net))
		if err != nil {
			slog.Warn("payslip mail failed", "email", slip.Email, "err", err)
			continue
		}
		sent++
	}
	h.Metrics.AddEmailsSent(sent)

	h.audited(r, "run.publish", "payroll_run", run.ID, map[string]any{
		"payslips": len(slips), "emailsSent": sent, "netTotal": totals.NetPay,
	})
	api.Success(w, map[string]any{
		"published":  len(slips),
		"emailsSent": sent,
		"totals":     totals,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}
	records := make([]*ledger.Record, len(stored))
	for i := range stored {
		records[i] = stored[i].Record
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-%s.csv", run.Period.Key()))
	if err := ledger.Export(w, records, run.Schema); err != nil {
		slog.Warn("csv export failed", "run", run.ID, "err", err)
	}
}

func (h *Handler) handleExportRegister(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	stored, err := h.Store.ListRecords(r.Context(), run.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}
	records := make([]*ledger.Record, len(stored))
	for i := range stored {
		records[i] = stored[i].Record
	}

	book, err := reports.WriteRegisterXLSX(run, records)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build register", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-register-%s.xlsx", run.Period.Key()))
	if _, err := w.Write(book); err != nil {
		slog.Warn("register write failed", "run", run.ID, "err", err)
	}
}
