package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/datacensus/datacensus/internal/agent"
	"github.com/datacensus/datacensus/internal/analyzer"
	"github.com/datacensus/datacensus/internal/backend"
	"github.com/datacensus/datacensus/internal/config"
	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/report"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Out       string
	Narrative bool
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report [dataset-id]",
		Short: "Analyze a dataset and export the PDF report",
		Long: `Run the full quality analysis and write the PDF report to disk.

With --narrative the report includes the AI-written analysis from the
configured agent webhook; without it, only the metrics summary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (default: metrics_<dataset>_<timestamp>.pdf)")
	cmd.Flags().BoolVar(&opts.Narrative, "narrative", false, "Include the AI narrative")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	out := cmd.OutOrStdout()

	datasetID := cfg.DefaultDatasetID
	if len(args) > 0 {
		datasetID = args[0]
	}

	if opts.Narrative && cfg.AgentWebhook == "" {
		return fmt.Errorf("--narrative requiere configurar agent_webhook")
	}

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
	})

	var (
		info   *quality.DatasetInfo
		result *quality.Result
	)
	hooks := analyzer.Hooks{
		PhaseChanged: func(p analyzer.Phase) {
			if text := p.StatusText(); text != "" {
				fmt.Fprintln(out, text)
			}
		},
		InfoLoaded:    func(i quality.DatasetInfo) { info = &i },
		ResultUpdated: func(r *quality.Result) { result = r },
		SlowMetricWarning: func(err error) {
			fmt.Fprintf(out, "No se pudo calcular la completitud: %v\n", err)
		},
	}

	if err := analyzer.New(client, logger).Analyze(cmd.Context(), datasetID, hooks); err != nil {
		return err
	}

	var narrator report.Narrator
	if opts.Narrative {
		narrator = agent.NewClient(agent.Config{
			WebhookURL: cfg.AgentWebhook,
			Logger:     logger,
		})
	}
	renderer := report.NewRenderer(report.Config{Narrator: narrator, Logger: logger})

	var (
		pdf []byte
		err error
	)
	if opts.Narrative {
		pdf, err = renderer.RenderWithNarrative(cmd.Context(), result, info)
	} else {
		pdf, err = renderer.RenderSummary(result, info)
	}
	if err != nil {
		return err
	}

	path := opts.Out
	if path == "" {
		path = report.Filename(info, time.Now())
	}
	if err := writeFileAtomic(path, pdf); err != nil {
		return fmt.Errorf("no se pudo escribir el reporte: %w", err)
	}

	fmt.Fprintf(out, "Reporte generado: %s\n", path)
	return nil
}

// writeFileAtomic writes via a temp file and rename, so a failed render never
// leaves a truncated report behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".datacensus-report-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
