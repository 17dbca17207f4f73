// Package output holds the terminal styling for the CLI commands.
package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/datacensus/datacensus/internal/quality"
)

// Styles groups the lipgloss styles used by the commands.
type Styles struct {
	Header    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style
	ScoreHigh lipgloss.Style
	ScoreMid  lipgloss.Style
	ScoreLow  lipgloss.Style
}

// NewStyles creates the default style set.
func NewStyles() *Styles {
	return &Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ScoreHigh: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		ScoreMid:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		ScoreLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// Score renders a score with the color of its classification; pending scores
// render muted.
func (s *Styles) Score(score quality.Score) string {
	if !score.Valid {
		return s.Muted.Render(score.Display())
	}
	switch quality.Classify(score.Value) {
	case "Excelente":
		return s.ScoreHigh.Render(score.Display())
	case "Aceptable":
		return s.ScoreMid.Render(score.Display())
	default:
		return s.ScoreLow.Render(score.Display())
	}
}
