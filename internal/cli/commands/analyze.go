package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/datacensus/datacensus/internal/analyzer"
	"github.com/datacensus/datacensus/internal/backend"
	"github.com/datacensus/datacensus/internal/cli/output"
	"github.com/datacensus/datacensus/internal/config"
	"github.com/datacensus/datacensus/internal/quality"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Format string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [dataset-id]",
		Short: "Analyze a dataset from the terminal",
		Long: `Run the full quality analysis for one dataset and print the scores.

Without an argument the configured default dataset is analyzed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table|json)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	out := cmd.OutOrStdout()

	datasetID := cfg.DefaultDatasetID
	if len(args) > 0 {
		datasetID = args[0]
	}

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
	})

	var (
		info    *quality.DatasetInfo
		result  *quality.Result
		warning string
	)

	hooks := analyzer.Hooks{
		PhaseChanged: func(p analyzer.Phase) {
			if text := p.StatusText(); text != "" && opts.Format != "json" {
				fmt.Fprintln(out, text)
			}
		},
		InfoLoaded: func(i quality.DatasetInfo) {
			info = &i
		},
		ResultUpdated: func(r *quality.Result) {
			result = r
		},
		SlowMetricWarning: func(err error) {
			warning = fmt.Sprintf("No se pudo calcular la completitud: %v", err)
		},
	}

	if err := analyzer.New(client, logger).Analyze(cmd.Context(), datasetID, hooks); err != nil {
		return err
	}

	if opts.Format == "json" {
		return renderAnalysisJSON(out, info, result, warning)
	}
	renderAnalysisTable(out, info, result, warning)
	return nil
}

// analysisOutput is the JSON shape of one analysis.
type analysisOutput struct {
	Dataset        *quality.DatasetInfo `json:"dataset"`
	Scores         map[string]*float64  `json:"scores"`
	Overall        float64              `json:"overall"`
	Classification string               `json:"classification"`
	Warning        string               `json:"warning,omitempty"`
}

func renderAnalysisJSON(w io.Writer, info *quality.DatasetInfo, result *quality.Result, warning string) error {
	payload := analysisOutput{
		Dataset: info,
		Scores:  make(map[string]*float64, len(quality.AllCriteria())),
		Warning: warning,
	}
	for _, c := range quality.AllCriteria() {
		if s := result.Score(c); s.Valid {
			v := s.Value
			payload.Scores[string(c)] = &v
		} else {
			payload.Scores[string(c)] = nil
		}
	}
	payload.Overall = result.Overall
	payload.Classification = quality.Classify(result.Overall)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderAnalysisTable(w io.Writer, info *quality.DatasetInfo, result *quality.Result, warning string) {
	styles := output.NewStyles()

	fmt.Fprintln(w)
	if info != nil {
		fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%s (%s)", info.Name, info.ID)))
		fmt.Fprintf(w, "%d filas, %d columnas, %d de %d registros\n",
			info.Rows, info.Columns, info.RecordsCount, info.TotalRecordsAvailable)
		if info.LimitReached {
			fmt.Fprintln(w, styles.Muted.Render("Se alcanzó el límite de registros; el análisis usa una muestra."))
		}
		fmt.Fprintln(w)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Criterio", "Puntaje", "Descripción"})

	for _, c := range quality.AllCriteria() {
		t.AppendRow(table.Row{c.Label(), styles.Score(result.Score(c)), c.Description()})
	}
	t.AppendFooter(table.Row{
		"Puntaje general",
		styles.Score(quality.Available(result.Overall)),
		quality.Classify(result.Overall),
	})
	t.Render()

	if warning != "" {
		fmt.Fprintln(w, styles.Warning.Render(warning))
	}
}
