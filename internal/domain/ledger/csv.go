package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"payledger/internal/domain/payroll"
)

// standardHeaders maps recognised sheet headers, lowercased, to either a
// fixed record field or a schema column key. Payroll providers are loose with
// header wording, so common variants are listed alongside the canonical form.
var standardHeaders = map[string]string{
	"name":      "name",
	"email":     "email",
	"id":        "id",
	"egid":      "id",
	"project":   "project",
	"role":      "role",
	"title":     "role",
	"bank":      "bankName",
	"bank name": "bankName",
	"iban":      "iban",
	"currency":  "currency",

	"worked days":         "workedDays",
	"ot 1.35":             "otDayHours",
	"ot 1.35x":            "otDayHours",
	"ot 1.7":              "otNightHours",
	"ot 1.7x":             "otNightHours",
	"ph hours":            "otHolidayHours",
	"public holiday (2x)": "otHolidayHours",
}

// ImportResult is what a sheet import produced, including the columns the
// header row added to the run's schema.
type ImportResult struct {
	Records   []*Record
	Schema    Schema
	Skipped   int
	HeaderRow int
}

// headerMarkers are the cells that identify a header row.
var headerMarkers = map[string]bool{"name": true, "email": true, "id": true, "egid": true}

// Import parses an employee salary sheet. The header row is located within
// the first few rows by looking for a name/email/id cell, so exports with
// title or note rows above the table still load. Unrecognised headers become
// schema columns: a "(Ent)" or "+" prefix marks an entitlement, "(Ded)" or
// "-" a deduction, and anything unmarked defaults to entitlement.
func Import(r io.Reader, schema Schema, cfg payroll.Config) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	headerRow := -1
	for i := 0; i < len(rows) && i < 5; i++ {
		for _, cell := range rows[i] {
			if headerMarkers[strings.ToLower(strings.TrimSpace(cell))] {
				headerRow = i
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("no header row with a name, email or id column in the first 5 rows")
	}

	out := Schema(append([]Column(nil), schema...))

	type colTarget struct {
		fixed string // fixed record field, or ""
		key   string // schema column key, or ""
	}
	targets := make([]colTarget, len(rows[headerRow]))
	for i, raw := range rows[headerRow] {
		header := strings.TrimSpace(raw)
		if header == "" {
			continue
		}
		if mapped, ok := standardHeaders[strings.ToLower(header)]; ok {
			targets[i] = colTarget{fixed: mapped}
			continue
		}

		label, kind := classifyHeader(header)
		// An unprefixed header that names an existing column feeds that
		// column rather than deriving a duplicate key.
		if col, ok := out.FindByLabel(label); ok {
			targets[i] = colTarget{key: col.Key}
			continue
		}
		key := KeyFor(label)
		if key == "" {
			continue
		}
		if _, ok := out.Find(key); !ok {
			out = append(out, Column{Key: key, Label: label, Kind: kind})
		}
		targets[i] = colTarget{key: key}
	}

	res := &ImportResult{Schema: out, HeaderRow: headerRow}
	for _, row := range rows[headerRow+1:] {
		if len(row) < 2 || blankRow(row) {
			res.Skipped++
			continue
		}
		rec := &Record{
			Name:       "Unknown",
			Currency:   DefaultCurrency,
			WorkedDays: cfg.StandardDays,
			Fields:     map[string]float64{},
			BaseValues: map[string]float64{},
		}
		for i, cell := range row {
			if i >= len(targets) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			t := targets[i]
			switch {
			case t.fixed != "":
				switch t.fixed {
				case "name":
					rec.Name = cell
				case "email":
					rec.Email = cell
				case "id":
					rec.ID = cell
				case "project":
					rec.Project = cell
				case "role":
					rec.Role = cell
				case "bankName":
					rec.BankName = cell
				case "iban":
					rec.IBAN = cell
				case "currency":
					rec.Currency = strings.ToUpper(cell)
				case "workedDays":
					rec.WorkedDays = parseMoney(cell)
				case "otDayHours":
					rec.OTDayHours = parseMoney(cell)
				case "otNightHours":
					rec.OTNightHours = parseMoney(cell)
				case "otHolidayHours":
					rec.OTHolidayHours = parseMoney(cell)
				}
			case t.key != "":
				rec.Fields[t.key] = parseMoney(cell)
			}
		}

		if rec.ID == "" {
			rec.ID = NewEmployeeID()
		}
		if rec.Email == "" {
			rec.Email = DeriveEmail(rec.Name, cfg.EmailDomain)
		}

		// The sheet carries period values; anchor the full-month base for
		// every proratable column so worked-days edits stay reversible.
		ratio := cfg.Ratio(rec.WorkedDays)
		if ratio <= 0 {
			ratio = 1
		}
		for _, c := range out {
			if !proratable(c) && c.Key != KeyBasic {
				continue
			}
			if v, ok := rec.Fields[c.Key]; ok {
				rec.BaseValues[c.Key] = payroll.Round(v / ratio)
			}
		}
		refreshOvertime(rec, cfg)

		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// parseMoney coerces a sheet cell to a number, tolerating currency
// formatting like "$12,500".
func parseMoney(cell string) float64 {
	cell = strings.NewReplacer("$", "", ",", "").Replace(cell)
	return parseAmount(cell)
}

// classifyHeader strips the entitlement/deduction marker from a custom
// header and returns the clean label with its kind.
func classifyHeader(header string) (label string, kind Kind) {
	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "(ded)"), strings.HasPrefix(header, "-"):
		kind = Deduction
	default:
		kind = Entitlement
	}
	label = header
	for _, marker := range []string{"(Ent)", "(ent)", "(ENT)", "(Ded)", "(ded)", "(DED)"} {
		label = strings.ReplaceAll(label, marker, "")
	}
	label = strings.TrimLeft(label, "+- ")
	label = strings.TrimSpace(label)
	if label == "" {
		label = header
	}
	return label, kind
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Export writes the run back out as a sheet: the fixed columns, every schema
// column labelled with its kind marker, and a trailing Net Pay column.
func Export(w io.Writer, records []*Record, schema Schema) error {
	cw := csv.NewWriter(w)

	header := []string{"ID", "Name", "Email", "Role", "Project", "Bank", "IBAN", "Currency",
		"Worked Days", "OT 1.35", "OT 1.7", "PH Hours"}
	for _, c := range schema {
		marker := "(Ent)"
		if c.Kind == Deduction {
			marker = "(Ded)"
		}
		header = append(header, c.Label+" "+marker)
	}
	header = append(header, "Net Pay")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{rec.ID, rec.Name, rec.Email, rec.Role, rec.Project,
			rec.BankName, rec.IBAN, rec.Currency,
			formatAmount(rec.WorkedDays), formatAmount(rec.OTDayHours),
			formatAmount(rec.OTNightHours), formatAmount(rec.OTHolidayHours)}
		for _, c := range schema {
			row = append(row, formatAmount(rec.Field(c.Key)))
		}
		row = append(row, formatAmount(NetPay(rec, schema)))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Template writes an empty import sheet with the recognised headers.
func Template(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Email", "Role", "Project", "Bank", "IBAN",
		"Currency", "Worked Days", "OT 1.35x", "OT 1.7x", "Public Holiday (2x)",
		"Basic", "Bonus", "(Ded) Loan Repayment"}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
