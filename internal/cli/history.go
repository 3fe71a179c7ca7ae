package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/tresmil/internal/api/response"
	"github.com/mcoot/tresmil/internal/model"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently finished games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/games/history"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result []*model.GameRecord

			if err := client.Get(path, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum games to list (default: server default)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-player statistics, most wins first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []*model.PlayerStats

			if err := client.Get("/api/players/stats", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newRefreshCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh-cache",
		Short: "Force the server to reload its history cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			var headers map[string]string
			if cfg.RefreshSecret != "" {
				headers = map[string]string{"X-Refresh-Secret": cfg.RefreshSecret}
			}

			var result response.Refresh

			if err := client.Post("/api/refresh-cache", headers, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.RefreshSecret, "secret", cfg.RefreshSecret, "Refresh secret (env: TRESMIL_REFRESH_SECRET)")

	return cmd
}
