package export

import (
	"alcyxob/snapfit/internal/domain"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ErrMalformedPlan reports a plan missing a required structural element.
// Saved plans always carry all three phases, so hitting this means the
// caller handed over something that never went through the analyzer.
var ErrMalformedPlan = errors.New("workout plan is structurally incomplete")

// PDFExporter renders workout plans to a paginated, printable PDF.
// Stateless; safe for concurrent use.
type PDFExporter struct{}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	titleFontSize   = 22
	headingFontSize = 15
	bodyFontSize    = 11
	lineHeight      = 5.5
)

// Render produces the printable document: title block, equipment section,
// the three phase sections in order, then notes when present. Missing
// optional fields (descriptions, tips) render as empty rather than failing.
func (e *PDFExporter) Render(plan *domain.WorkoutPlan, durationMinutes int, level domain.FitnessLevel) ([]byte, error) {
	if plan == nil || plan.Workout.Main == nil || plan.Workout.Warmup == nil || plan.Workout.Cooldown == nil {
		return nil, ErrMalformedPlan
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.SetTextColor(79, 70, 229)
	pdf.CellFormat(0, 12, fmt.Sprintf("%d-Minute Workout Plan", durationMinutes), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, lineHeight, "Fitness Level: "+capitalize(string(level)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Generated: "+time.Now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	e.heading(pdf, "Equipment & Features")
	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.MultiCell(0, lineHeight, strings.Join(plan.Equipment, ", "), "", "L", false)
	pdf.Ln(2)

	e.heading(pdf, "Warm-up")
	for _, ex := range plan.Workout.Warmup {
		e.phaseExercise(pdf, ex)
	}

	e.heading(pdf, "Main Workout")
	for _, ex := range plan.Workout.Main {
		pdf.SetFont("Helvetica", "B", bodyFontSize)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("%s - %d sets x %s", ex.Name, ex.Sets, ex.Reps), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.MultiCell(0, lineHeight, "    Equipment: "+ex.Equipment, "", "L", false)
		pdf.MultiCell(0, lineHeight, "    Tips: "+ex.Tips, "", "L", false)
		pdf.Ln(2)
	}

	e.heading(pdf, "Cool-down & Stretch")
	for _, ex := range plan.Workout.Cooldown {
		e.phaseExercise(pdf, ex)
	}

	if plan.Notes != "" {
		pdf.Ln(2)
		e.heading(pdf, "Important Notes")
		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.MultiCell(0, lineHeight, plan.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", headingFontSize)
	pdf.SetTextColor(79, 70, 229)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (e *PDFExporter) phaseExercise(pdf *fpdf.Fpdf, ex domain.PhaseExercise) {
	pdf.SetFont("Helvetica", "B", bodyFontSize)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("%s - %s", ex.Name, ex.Duration), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.MultiCell(0, lineHeight, "    "+ex.Description, "", "L", false)
	pdf.Ln(2)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
