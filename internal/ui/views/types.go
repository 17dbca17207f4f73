package views

import (
	"github.com/datacensus/datacensus/internal/quality"
)

// PageData feeds the full dashboard page.
type PageData struct {
	Title            string
	DefaultDatasetID string
	Status           StatusData
	Scoreboard       ScoreboardData
	Info             *InfoData
	Chat             ChatData
	Dev              bool
}

// StatusData feeds the status banner above the scorecards.
type StatusData struct {
	Text    string
	Busy    bool
	Error   string
	Warning string
}

// Scorecard is one criterion card.
type Scorecard struct {
	ID          string
	Label       string
	Description string
	Display     string
	Class       string
	Pending     bool
}

// ScoreboardData feeds the scorecards grid plus the overall card.
type ScoreboardData struct {
	Cards       []Scorecard
	Overall     Scorecard
	HasScores   bool
	ReportReady bool
}

// InfoData feeds the dataset metadata badges.
type InfoData struct {
	ID                    string
	Name                  string
	Rows                  int
	Columns               int
	RecordsCount          int
	TotalRecordsAvailable int
	LimitReached          bool
}

// ChatMessage is one rendered chat bubble.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatData feeds the conversational search panel.
type ChatData struct {
	Messages []ChatMessage
	Busy     bool
	Error    string
}

// BuildScoreboard maps an analysis result onto the scorecards grid. A nil
// result renders every card pending.
func BuildScoreboard(result *quality.Result) ScoreboardData {
	data := ScoreboardData{
		Overall: Scorecard{
			ID:      "overall",
			Label:   "Puntaje general",
			Display: "N/A",
			Class:   "score-pending",
			Pending: true,
		},
	}

	for _, c := range quality.AllCriteria() {
		card := Scorecard{
			ID:          string(c),
			Label:       c.Label(),
			Description: c.Description(),
			Display:     "N/A",
			Class:       "score-pending",
			Pending:     true,
		}
		if result != nil {
			if s := result.Score(c); s.Valid {
				card.Display = s.Display()
				card.Class = scoreClass(s.Value)
				card.Pending = false
			}
		}
		data.Cards = append(data.Cards, card)
	}

	if result != nil {
		for _, s := range result.Scores {
			if s.Valid {
				data.HasScores = true
				break
			}
		}
	}
	if data.HasScores {
		data.Overall.Display = quality.Available(result.Overall).Display()
		data.Overall.Class = scoreClass(result.Overall)
		data.Overall.Pending = false
		data.ReportReady = true
	}
	return data
}

// BuildInfo maps dataset metadata onto the badges fragment.
func BuildInfo(info *quality.DatasetInfo) *InfoData {
	if info == nil {
		return nil
	}
	return &InfoData{
		ID:                    info.ID,
		Name:                  info.Name,
		Rows:                  info.Rows,
		Columns:               info.Columns,
		RecordsCount:          info.RecordsCount,
		TotalRecordsAvailable: info.TotalRecordsAvailable,
		LimitReached:          info.LimitReached,
	}
}

func scoreClass(v float64) string {
	switch quality.Classify(v) {
	case "Excelente":
		return "score-high"
	case "Aceptable":
		return "score-mid"
	default:
		return "score-low"
	}
}
