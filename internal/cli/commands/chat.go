package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/datacensus/datacensus/internal/agent"
	"github.com/datacensus/datacensus/internal/cli/output"
	"github.com/datacensus/datacensus/internal/config"
	"github.com/datacensus/datacensus/internal/textfmt"
)

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Search datasets conversationally from the terminal",
		Long: `Start an interactive session against the dataset search agent.

Type a question per line; .quit exits.`,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	if cfg.SearchWebhook == "" {
		return fmt.Errorf("el chat requiere configurar search_webhook")
	}

	client := agent.NewClient(agent.Config{
		WebhookURL: cfg.SearchWebhook,
		Logger:     logger,
	})
	styles := output.NewStyles()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "datacensus> ",
		HistoryFile:     chatHistoryFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Búsqueda conversacional de datasets")
	fmt.Fprintln(out, "Escribe tu pregunta, .quit para salir")
	fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ".quit", ".exit":
			return nil
		}

		answer, err := client.Ask(cmd.Context(), line)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		// Agent answers arrive as markdown; the terminal gets plain text.
		fmt.Fprintln(out, textfmt.PlainText(answer))
		fmt.Fprintln(out)
	}
}

func chatHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".datacensus_chat_history")
}
