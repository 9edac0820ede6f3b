package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	RunStatusDraft     = "draft"
	RunStatusPublished = "published"
)

// ErrRunPublished guards every mutation of a published run.
var ErrRunPublished = errors.New("payroll run is published and read-only")

type Run struct {
	ID          string     `json:"id"`
	Period      Period     `json:"period"`
	Status      string     `json:"status"`
	Schema      Schema     `json:"schema"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// StoredRecord pairs a record with its row id, which is what edit and delete
// endpoints address.
type StoredRecord struct {
	RowID  string
	Record *Record
}

type PayslipLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Kind   Kind    `json:"kind"`
}

type Payslip struct {
	ID          string        `json:"id"`
	RunID       string        `json:"runId"`
	EmployeeID  string        `json:"employeeId"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	PeriodLabel string        `json:"periodLabel"`
	Currency    string        `json:"currency"`
	Gross       float64       `json:"gross"`
	Deductions  float64       `json:"deductions"`
	Net         float64       `json:"net"`
	Lines       []PayslipLine `json:"lines"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func (s *Store) CreateRun(ctx context.Context, period Period, schema Schema) (*Run, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	run := &Run{Period: period, Status: RunStatusDraft, Schema: schema}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO payroll_runs (month, year, schema_json)
    VALUES ($1,$2,$3)
    RETURNING id, status, created_at, updated_at
  `, period.Month, period.Year, schemaJSON).Scan(&run.ID, &run.Status, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	return s.scanRun(s.DB.QueryRow(ctx, `
    SELECT id, month, year, status, schema_json, created_at, updated_at, published_at
    FROM payroll_runs
    WHERE id = $1
  `, runID))
}

func (s *Store) GetRunByPeriod(ctx context.Context, period Period) (*Run, error) {
	return s.scanRun(s.DB.QueryRow(ctx, `
    SELECT id, month, year, status, schema_json, created_at, updated_at, published_at
    FROM payroll_runs
    WHERE year = $1 AND month = $2
  `, period.Year, period.Month))
}

func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, month, year, status, schema_json, created_at, updated_at, published_at
    FROM payroll_runs
    ORDER BY year DESC, month DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (s *Store) scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var schemaJSON []byte
	if err := row.Scan(&run.ID, &run.Period.Month, &run.Period.Year, &run.Status,
		&schemaJSON, &run.CreatedAt, &run.UpdatedAt, &run.PublishedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schemaJSON, &run.Schema); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) UpdateRunSchema(ctx context.Context, runID string, schema Schema) error {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE payroll_runs
    SET schema_json = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, schemaJSON, runID, RunStatusDraft)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRunPublished
	}
	return nil
}

func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM payroll_runs WHERE id = $1", runID)
	return err
}

func (s *Store) InsertRecords(ctx context.Context, runID string, records []*Record) error {
	for _, rec := range records {
		doc, ibanEnc, err := s.docForStorage(rec)
		if err != nil {
			return err
		}
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO run_records (run_id, employee_id, doc, iban_enc)
      VALUES ($1,$2,$3,$4)
    `, runID, rec.ID, doc, ibanEnc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, runID string) ([]StoredRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, doc, iban_enc
    FROM run_records
    WHERE run_id = $1
    ORDER BY created_at, id
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var rowID string
		var doc, ibanEnc []byte
		if err := rows.Scan(&rowID, &doc, &ibanEnc); err != nil {
			return nil, err
		}
		rec, err := s.recordFromDoc(doc, ibanEnc)
		if err != nil {
			return nil, err
		}
		out = append(out, StoredRecord{RowID: rowID, Record: rec})
	}
	return out, nil
}

func (s *Store) GetRecord(ctx context.Context, runID, rowID string) (*Record, error) {
	var doc, ibanEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT doc, iban_enc
    FROM run_records
    WHERE run_id = $1 AND id = $2
  `, runID, rowID).Scan(&doc, &ibanEnc)
	if err != nil {
		return nil, err
	}
	return s.recordFromDoc(doc, ibanEnc)
}

func (s *Store) SaveRecord(ctx context.Context, runID, rowID string, rec *Record) error {
	doc, ibanEnc, err := s.docForStorage(rec)
	if err != nil {
		return err
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE run_records
    SET employee_id = $1, doc = $2, iban_enc = $3, updated_at = now()
    WHERE run_id = $4 AND id = $5
  `, rec.ID, doc, ibanEnc, runID, rowID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, runID, rowID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM run_records WHERE run_id = $1 AND id = $2", runID, rowID)
	return err
}

func (s *Store) ClearRecords(ctx context.Context, runID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM run_records WHERE run_id = $1", runID)
	return err
}

// PublishRun freezes a draft run and writes its payslips in one transaction.
// Publishing twice fails with ErrRunPublished.
func (s *Store) PublishRun(ctx context.Context, runID string, slips []Payslip) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM payroll_runs WHERE id = $1 FOR UPDATE", runID).Scan(&status); err != nil {
		return err
	}
	if status != RunStatusDraft {
		return ErrRunPublished
	}

	for _, slip := range slips {
		linesJSON, err := json.Marshal(slip.Lines)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO payslips (run_id, employee_id, employee_name, email, period_label,
        currency, gross, deductions, net, lines_json)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, runID, slip.EmployeeID, slip.Name, slip.Email, slip.PeriodLabel,
			slip.Currency, slip.Gross, slip.Deductions, slip.Net, linesJSON); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE payroll_runs
    SET status = $1, published_at = now(), updated_at = now()
    WHERE id = $2
  `, RunStatusPublished, runID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListPayslips(ctx context.Context, runID string) ([]Payslip, error) {
	return s.queryPayslips(ctx, `
    SELECT id, run_id, employee_id, employee_name, email, period_label,
           currency, gross, deductions, net, lines_json, created_at
    FROM payslips
    WHERE run_id = $1
    ORDER BY employee_name
  `, runID)
}

func (s *Store) ListPayslipsByEmail(ctx context.Context, email string) ([]Payslip, error) {
	return s.queryPayslips(ctx, `
    SELECT id, run_id, employee_id, employee_name, email, period_label,
           currency, gross, deductions, net, lines_json, created_at
    FROM payslips
    WHERE lower(email) = lower($1)
    ORDER BY created_at DESC
  `, email)
}

func (s *Store) GetPayslip(ctx context.Context, payslipID string) (*Payslip, error) {
	slips, err := s.queryPayslips(ctx, `
    SELECT id, run_id, employee_id, employee_name, email, period_label,
           currency, gross, deductions, net, lines_json, created_at
    FROM payslips
    WHERE id = $1
  `, payslipID)
	if err != nil {
		return nil, err
	}
	if len(slips) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &slips[0], nil
}

// PublishedTotals sums payslip amounts per run, for the history listing.
func (s *Store) PublishedTotals(ctx context.Context) (map[string]Totals, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT run_id, COALESCE(SUM(gross),0), COALESCE(SUM(deductions),0), COALESCE(SUM(net),0)
    FROM payslips
    GROUP BY run_id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]Totals{}
	for rows.Next() {
		var runID string
		var t Totals
		if err := rows.Scan(&runID, &t.GrossEarnings, &t.TotalDeductions, &t.NetPay); err != nil {
			return nil, err
		}
		out[runID] = t
	}
	return out, nil
}

func (s *Store) queryPayslips(ctx context.Context, query string, args ...any) ([]Payslip, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payslip
	for rows.Next() {
		var slip Payslip
		var linesJSON []byte
		if err := rows.Scan(&slip.ID, &slip.RunID, &slip.EmployeeID, &slip.Name, &slip.Email,
			&slip.PeriodLabel, &slip.Currency, &slip.Gross, &slip.Deductions, &slip.Net,
			&linesJSON, &slip.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(linesJSON, &slip.Lines); err != nil {
			return nil, err
		}
		out = append(out, slip)
	}
	return out, nil
}

// BuildPayslip prices one record under the run's schema. Mandatory statutory
// lines always appear even at zero; other zero-value lines are dropped.
func BuildPayslip(rec *Record, run *Run) Payslip {
	totals := Aggregate(rec, run.Schema)
	slip := Payslip{
		RunID:       run.ID,
		EmployeeID:  rec.ID,
		Name:        rec.Name,
		Email:       rec.Email,
		PeriodLabel: run.Period.Label(),
		Currency:    rec.Currency,
		Gross:       totals.GrossEarnings,
		Deductions:  totals.TotalDeductions,
		Net:         totals.NetPay,
	}
	if slip.Currency == "" {
		slip.Currency = DefaultCurrency
	}

	mandatory := make(map[string]bool, len(MandatoryPayslipKeys))
	for _, key := range MandatoryPayslipKeys {
		mandatory[key] = true
	}
	for _, col := range run.Schema {
		v := rec.Field(col.Key)
		if v == 0 && !mandatory[col.Key] {
			continue
		}
		slip.Lines = append(slip.Lines, PayslipLine{Label: col.Label, Amount: v, Kind: col.Kind})
	}
	return slip
}
