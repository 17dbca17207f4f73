package commands

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/datacensus/datacensus/internal/config"
	"github.com/datacensus/datacensus/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the DataCensus dashboard",
		Long: `Start the local web server for the quality dashboard.

The dashboard lets you analyze a dataset, watch the criteria scores
stream in, export PDF reports and search the portal conversationally.`,
		Example: `  # Start on the default port
  datacensus serve

  # Custom port, no browser
  datacensus serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload browsers on static asset changes")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable dev endpoints and filesystem assets")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	server := ui.NewServer(ui.ServerConfig{
		Config:        cfg,
		SessionSecret: sessionSecret(),
		Watch:         opts.Watch || opts.Dev,
		IsDev:         opts.Dev,
		Logger:        logger,
	})

	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting dashboard on http://localhost:%d\n", cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// sessionSecret returns the cookie signing secret. The fallback is only
// acceptable for local use; deployments set DATACENSUS_SESSION_SECRET.
func sessionSecret() string {
	if secret := os.Getenv("DATACENSUS_SESSION_SECRET"); secret != "" {
		return secret
	}
	return "datacensus-dev-secret-change-in-production"
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
