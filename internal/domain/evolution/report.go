package evolution

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WriteReportPDF renders the evolution result as a printable A4 report.
func WriteReportPDF(w io.Writer, res *Result, company string, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Evolución de competencias"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s: evolución de competencias", company)))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s (%s a %s). Generado %s", res.Meta.TimeRangeLabel, res.Meta.StartDate, res.Meta.EndDate, generatedAt.UTC().Format("2006-01-02 15:04 UTC"))))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Resumen"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Índice de madurez: %s", formatScore(res.Meta.CurrentMaturityIndex))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Variación del periodo: %s", formatDelta(res.Meta.PeriodDelta))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Colaboradores evaluados: %d", res.Meta.TotalEmployees)))
	pdf.Ln(6)
	if top := res.Insights.TopImprover; top != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Mayor progreso: %s (%+.1f)", top.Name, top.GrowthValue())))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	summaries := BuildRoleSummaries(res.Employees)
	if len(summaries) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr("Por rol"))
		pdf.Ln(8)
		table(pdf, tr, []float64{60, 25, 30, 30, 30}, []string{"Rol", "Personas", "Promedio", "Crecimiento", "Atención"}, func(row func(...string)) {
			for _, s := range summaries {
				row(s.Role, fmt.Sprint(s.Employees), fmt.Sprintf("%.1f", s.AvgScore), fmt.Sprintf("%+.1f", s.AvgGrowth), fmt.Sprint(s.Attention))
			}
		})
		pdf.Ln(6)
	}

	if len(res.ChartData) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr("Serie mensual"))
		pdf.Ln(8)
		table(pdf, tr, []float64{35, 30, 25, 85}, []string{"Mes", "Promedio", "Personas", "Incorporaciones"}, func(row func(...string)) {
			for _, p := range res.ChartData {
				avg := formatScore(p.AvgScore)
				if p.IsCarryOver {
					avg += "*"
				}
				row(p.Date[:7], avg, fmt.Sprint(p.Count), strings.Join(p.NewHires, ", "))
			}
		})
		pdf.SetFont("Helvetica", "I", 8)
		pdf.Cell(0, 5, tr("* sin evaluaciones nuevas en el mes; se arrastra el último valor"))
		pdf.Ln(8)
	}

	if len(res.Insights.SupportCases) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(fmt.Sprintf("Casos de apoyo (%d)", res.Insights.SupportCount)))
		pdf.Ln(8)
		table(pdf, tr, []float64{55, 40, 25, 25, 35}, []string{"Nombre", "Rol", "Actual", "Brechas C", "Motivo"}, func(row func(...string)) {
			for _, c := range res.Insights.SupportCases {
				row(c.Name, c.Role, fmt.Sprintf("%.1f", c.CurrentScore), fmt.Sprint(c.CriticalGaps), reasonLabel(c.Reasons))
			}
		})
	}

	return pdf.Output(w)
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, header []string, body func(row func(...string))) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	body(func(cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	})
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func formatDelta(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f", *v)
}

func reasonLabel(reasons []string) string {
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		switch r {
		case ReasonLowScore:
			labels = append(labels, "nivel bajo")
		case ReasonDeclining:
			labels = append(labels, "en descenso")
		}
	}
	return strings.Join(labels, ", ")
}
