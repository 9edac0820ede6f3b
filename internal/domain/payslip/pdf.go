// Package payslip renders published payslips as PDF documents.
package payslip

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"payledger/internal/domain/ledger"
)

func Render(slip *ledger.Payslip, companyName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, companyName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip - %s", slip.PeriodLabel))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", slip.Name, slip.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Email: %s", slip.Email))
	pdf.Ln(10)

	writeSection := func(title string, kind ledger.Kind) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range slip.Lines {
			if line.Kind != kind {
				continue
			}
			pdf.Cell(120, 6, line.Label)
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f %s", line.Amount, slip.Currency), "", 0, "R", false, 0, "")
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}
	writeSection("Earnings", ledger.Entitlement)
	writeSection("Deductions", ledger.Deduction)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(120, 7, "Gross Earnings")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f %s", slip.Gross, slip.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(7)
	pdf.Cell(120, 7, "Total Deductions")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f %s", slip.Deductions, slip.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Net Pay")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f %s", slip.Net, slip.Currency), "T", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
