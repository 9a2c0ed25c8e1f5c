package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"quizely-service/internal/app"
	"quizely-service/internal/config"
	"quizely-service/internal/domain"
	"quizely-service/internal/export"
)

// NewExportCmd dumps the persisted leaderboard as CSV without starting the
// server.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the leaderboard as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: quizely-leaderboard-<date>.csv to stdout)")
	return cmd
}

func runExport(ctx context.Context, configPath, out string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	repo, cleanup, err := buildRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	board := app.NewLeaderboard(ctx, repo, cfg.Leaderboard.Capacity)
	payload := export.ToCSV(board.Query(domain.WindowAll, ""))

	if out == "" {
		_, err := os.Stdout.WriteString(payload)
		return err
	}
	if out == "auto" {
		out = export.Filename(time.Now())
	}
	return os.WriteFile(out, []byte(payload), 0o644)
}
