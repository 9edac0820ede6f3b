// Package reports builds the payroll register workbook for finance.
package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"payledger/internal/domain/ledger"
)

// WriteRegisterXLSX renders the run as a spreadsheet: identity columns, every
// schema column, and the computed totals per row plus a footer of run totals.
func WriteRegisterXLSX(run *ledger.Run, records []*ledger.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payroll Register"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Role", "Project", "Bank", "Currency", "Worked Days"}
	for _, col := range run.Schema {
		marker := "(Ent)"
		if col.Kind == ledger.Deduction {
			marker = "(Ded)"
		}
		headers = append(headers, col.Label+" "+marker)
	}
	headers = append(headers, "Gross Earnings", "Total Deductions", "Net Pay")

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Payroll Register - %s", run.Period.Label())); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var totalGross, totalDeductions, totalNet float64
	for rowIdx, rec := range records {
		totals := ledger.Aggregate(rec, run.Schema)
		totalGross += totals.GrossEarnings
		totalDeductions += totals.TotalDeductions
		totalNet += totals.NetPay

		values := []any{rec.ID, rec.Name, rec.Email, rec.Role, rec.Project,
			rec.BankName, rec.Currency, rec.WorkedDays}
		for _, col := range run.Schema {
			values = append(values, rec.Field(col.Key))
		}
		values = append(values, totals.GrossEarnings, totals.TotalDeductions, totals.NetPay)

		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	footerRow := len(records) + 3
	footer := map[int]any{1: "Totals",
		len(headers) - 2: totalGross,
		len(headers) - 1: totalDeductions,
		len(headers):     totalNet,
	}
	for colIdx, v := range footer {
		cell, err := excelize.CoordinatesToCellName(colIdx, footerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
