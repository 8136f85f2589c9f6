package compliance

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var reportColumns = []struct {
	title string
	width float64
}{
	{"Employee", 50},
	{"Item", 60},
	{"Reference", 25},
	{"Due", 25},
	{"Status", 20},
}

func renderReport(companyName string, items []Item, summary Summary, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Compliance report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Compliance report: %s", companyName)))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", Day(now).Format(dateLayout)))
	pdf.Ln(8)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d   Overdue: %d   Due in 30 days: %d   Due in 60 days: %d",
		summary.Total, summary.Overdue, summary.Due30, summary.Due60))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range reportColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		values := []string{
			item.EmployeeName,
			item.Title,
			dateCell(item.ReferenceDate),
			dateCell(item.DueDate),
			statusCell(item.Status),
		}
		for i, col := range reportColumns {
			pdf.CellFormat(col.width, 6, tr(truncate(values[i], int(col.width/2))), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render compliance report: %w", err)
	}
	return buf.Bytes(), nil
}

func dateCell(d *Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func statusCell(s Status) string {
	switch s {
	case StatusOverdue:
		return "Overdue"
	case StatusDueSoon:
		return "Due soon"
	case StatusCurrent:
		return "Current"
	}
	return "-"
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
