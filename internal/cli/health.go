package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mcoot/tresmil/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health

			if err := client.Get("/api/health", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Game store diagnostics",
	}

	cmd.AddCommand(newCheckDatabaseCmd())
	cmd.AddCommand(newCheckDataCmd())

	return cmd
}

func newCheckDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "database",
		Short: "Check that the server can reach its game store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DatabaseCheck
			return runCheck(cmd, "/api/check-database", &result)
		},
	}
}

func newCheckDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "data",
		Short: "Check that history and stats can be read from the game store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DataRetrievalCheck
			return runCheck(cmd, "/api/check-data-retrieval", &result)
		},
	}
}

// runCheck prints a diagnostics report and fails on any non-200 status
func runCheck[T any](cmd *cobra.Command, path string, result *T) error {
	status, err := client.GetReport(path, result)
	if err != nil {
		return err
	}

	newOutput(cmd).Print(*result)
	if status != http.StatusOK {
		return fmt.Errorf("check failed: HTTP %d", status)
	}
	return nil
}

func newOutput(cmd *cobra.Command) *Output {
	return NewOutputTo(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Verbose(cfg.Verbose)
}
