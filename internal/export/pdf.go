// Package export renders a project's final plan as a printable PDF.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/models"
)

const dateLayout = "Mon, 02 Jan 2006"

// FinalPlanPDF writes the grouped confirmed items of project to w.
func FinalPlanPDF(w io.Writer, project *models.Project, plan itinerary.Grouping) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(project.Title+" - Final Plan", true)
	pdf.SetCreator("TriPlan", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(project.Title))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(project.Destination))
	pdf.Ln(7)
	if span := tripSpan(project); span != "" {
		pdf.Cell(0, 7, span)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	if len(plan.Days) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "No confirmed activities yet.")
		pdf.Ln(7)
	}

	for _, day := range plan.Days {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 8, fmt.Sprintf("Day %d - %s", day.Day, day.Date.Format(dateLayout)), "", 1, "L", true, 0, "")
		pdf.Ln(2)

		for _, item := range day.Items {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 6, tr(item.Title))
			pdf.Ln(6)

			pdf.SetFont("Helvetica", "", 10)
			details := []string{item.Location, item.TypeOfActivity}
			if !item.Date.IsZero() {
				details = append([]string{item.Date.UTC().Format("15:04")}, details...)
			}
			pdf.Cell(0, 5, tr(strings.Join(nonEmpty(details), "  |  ")))
			pdf.Ln(5)

			if item.Notes != "" {
				pdf.SetFont("Helvetica", "I", 10)
				pdf.MultiCell(0, 5, tr(item.Notes), "", "", false)
			}
			pdf.Ln(3)
		}
		pdf.Ln(2)
	}

	if pdf.Err() {
		return fmt.Errorf("failed to render final plan: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write final plan: %w", err)
	}
	return nil
}

// FinalPlanBytes is FinalPlanPDF into a buffer.
func FinalPlanBytes(project *models.Project, plan itinerary.Grouping) ([]byte, error) {
	var buf bytes.Buffer
	if err := FinalPlanPDF(&buf, project, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a project's plan.
func Filename(project *models.Project) string {
	var b strings.Builder
	for _, r := range strings.ToLower(project.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "trip"
	}
	return name + "-final-plan.pdf"
}

func tripSpan(p *models.Project) string {
	switch {
	case p.StartDate.IsZero() && p.EndDate.IsZero():
		return ""
	case p.EndDate.IsZero():
		return "From " + p.StartDate.Format(dateLayout)
	case p.StartDate.IsZero():
		return "Until " + p.EndDate.Format(dateLayout)
	}
	return p.StartDate.Format(dateLayout) + " - " + p.EndDate.Format(dateLayout)
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
