// Package report generates the downloadable PDF quality report.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/textfmt"
)

// Narrator generates the optional free-text narrative. Satisfied by
// agent.Client pointed at the calification webhook.
type Narrator interface {
	Ask(ctx context.Context, userMessage string) (string, error)
}

// Config holds renderer construction parameters.
type Config struct {
	// Now supplies timestamps; injectable so rendering is deterministic
	// under test. Defaults to time.Now.
	Now      func() time.Time
	Narrator Narrator
	Logger   *slog.Logger
}

// Renderer produces PDF reports from quality results. Rendering happens
// entirely in memory; nothing touches disk here, so a failed render never
// leaves a partial file behind.
type Renderer struct {
	now      func() time.Time
	narrator Narrator
	logger   *slog.Logger
}

// NewRenderer creates a report renderer.
func NewRenderer(cfg Config) *Renderer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{now: now, narrator: cfg.Narrator, logger: logger}
}

// RenderSummary produces the plain report: title block, overall score,
// per-criterion lines and the details section. Deterministic for identical
// inputs and clock.
func (r *Renderer) RenderSummary(result *quality.Result, info *quality.DatasetInfo) ([]byte, error) {
	return r.render(result, info, "")
}

// RenderWithNarrative asks the narrative agent to comment on the metrics and
// embeds the normalized text. The narrative failure propagates as
// AnalysisUnavailableError; the caller decides whether to fall back to
// RenderSummary — the two are never silently merged.
func (r *Renderer) RenderWithNarrative(ctx context.Context, result *quality.Result, info *quality.DatasetInfo) ([]byte, error) {
	if r.narrator == nil {
		return nil, &quality.AnalysisUnavailableError{Err: fmt.Errorf("agente de análisis no configurado")}
	}

	narrative, err := r.narrator.Ask(ctx, MetricsPrompt(result, info))
	if err != nil {
		return nil, &quality.AnalysisUnavailableError{Err: err}
	}

	return r.render(result, info, textfmt.PlainText(narrative))
}

// Filename builds the download name, embedding the dataset id (when known)
// and the generation timestamp.
func Filename(info *quality.DatasetInfo, now time.Time) string {
	id := "dataset"
	if info != nil && info.ID != "" {
		id = info.ID
	}
	return fmt.Sprintf("metrics_%s_%s.pdf", id, now.UTC().Format("2006-01-02T15-04-05Z"))
}

// MetricsPrompt serializes the metrics for the narrative agent: one
// "criterion: value" line per criterion plus the overall score, prefixed with
// the dataset name and id when known.
func MetricsPrompt(result *quality.Result, info *quality.DatasetInfo) string {
	var b strings.Builder
	if info != nil {
		fmt.Fprintf(&b, "Dataset: %s (%s)\n", info.Name, info.ID)
	}
	for _, row := range criterionRows(result) {
		fmt.Fprintf(&b, "%s: %s\n", row.Label, row.Display)
	}
	fmt.Fprintf(&b, "Promedio general: %.1f", result.Overall)
	return b.String()
}

// criterionRow is one rendered scorecard line.
type criterionRow struct {
	Criterion quality.Criterion
	Label     string
	Score     quality.Score
	Display   string
}

// criterionRows flattens the result into display order. A pending criterion
// renders "N/A"; a real zero renders "0.0".
func criterionRows(result *quality.Result) []criterionRow {
	rows := make([]criterionRow, 0, len(quality.AllCriteria()))
	for _, c := range quality.AllCriteria() {
		s := result.Score(c)
		rows = append(rows, criterionRow{
			Criterion: c,
			Label:     c.Label(),
			Score:     s,
			Display:   s.Display(),
		})
	}
	return rows
}

// Layout constants, A4 millimeters.
const (
	headerHeight = 40.0
	marginLeft   = 20.0
	rowHeight    = 10.0
	barWidth     = 80.0
	barHeight    = 4.0
)

func (r *Renderer) render(result *quality.Result, info *quality.DatasetInfo, narrative string) ([]byte, error) {
	now := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("DataCensus - Reporte de Calidad de Datos", true)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Footer on every page: "Página N de total", total resolved by the
	// NbPages alias once layout is done.
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10,
			tr(fmt.Sprintf("DataCensus • ISO/IEC 25012 • Página %d de {nb}", pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header band.
	pageWidth, pageHeight := pdf.GetPageSize()
	pdf.SetFillColor(37, 99, 235)
	pdf.Rect(0, 0, pageWidth, headerHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(0, 10)
	pdf.CellFormat(pageWidth, 10, "DataCensus", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(pageWidth, 8, "Reporte de Calidad de Datos", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(pageWidth, 6, tr(fmt.Sprintf("Generado: %s", now.Format("2006-01-02 15:04"))), "", 1, "C", false, 0, "")

	pdf.SetY(headerHeight + 8)

	// Dataset block.
	pdf.SetTextColor(0, 0, 0)
	if info != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("Dataset: %s", info.Name)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("ID: %s", info.ID)), "", 1, "L", false, 0, "")
		line := fmt.Sprintf("%d registros • %d filas × %d columnas", info.RecordsCount, info.Rows, info.Columns)
		if info.LimitReached {
			line += " • Límite de descarga alcanzado"
		}
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	// Overall score.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr("Calificación General"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 14, fmt.Sprintf("%.1f/10", result.Overall), "", 1, "C", false, 0, "")
	cr, cg, cb := scoreColor(result.Overall)
	pdf.SetTextColor(cr, cg, cb)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, quality.Classify(result.Overall), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Per-criterion lines with score bars.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr("Métricas Individuales"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)

	for _, row := range criterionRows(result) {
		if pdf.GetY() > pageHeight-30 {
			pdf.AddPage()
		}
		y := pdf.GetY()

		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(70, rowHeight, tr(row.Label), "", 0, "L", false, 0, "")

		barX := pageWidth - barWidth - 40
		barY := y + (rowHeight-barHeight)/2
		pdf.SetFillColor(229, 231, 235)
		pdf.Rect(barX, barY, barWidth, barHeight, "F")

		if row.Score.Valid {
			br, bg, bb := scoreColor(row.Score.Value)
			pdf.SetFillColor(br, bg, bb)
			pdf.Rect(barX, barY, (row.Score.Value/10)*barWidth, barHeight, "F")
			pdf.SetTextColor(br, bg, bb)
		} else {
			pdf.SetTextColor(128, 128, 128)
		}
		pdf.SetXY(pageWidth-28, y)
		pdf.CellFormat(20, rowHeight, row.Display, "", 1, "R", false, 0, "")
		pdf.SetY(y + rowHeight)
	}

	// Details section.
	details := detailLines(result)
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Detalles", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if len(details) == 0 {
		pdf.CellFormat(0, 6, "No hay detalles adicionales disponibles.", "", 1, "L", false, 0, "")
	}
	for _, line := range details {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	// Narrative section.
	if narrative != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr("Análisis"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5.5, tr(narrative), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &quality.RenderError{Err: err}
	}

	r.logger.Debug("report rendered", "bytes", buf.Len(), "pages", pdf.PageCount())
	return buf.Bytes(), nil
}

// detailLines flattens the per-criterion details deterministically.
func detailLines(result *quality.Result) []string {
	criteria := make([]quality.Criterion, 0, len(result.Details))
	for c := range result.Details {
		criteria = append(criteria, c)
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i] < criteria[j] })

	var lines []string
	for _, c := range criteria {
		payload, err := json.Marshal(result.Details[c])
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.Label(), payload))
	}
	return lines
}

// scoreColor maps a score to the traffic-light palette used across the
// dashboard and the report.
func scoreColor(score float64) (int, int, int) {
	switch {
	case score >= 7:
		return 34, 197, 94
	case score >= 5:
		return 234, 179, 8
	default:
		return 239, 68, 68
	}
}
