package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dda-sim/dda/internal/logging"
	"github.com/dda-sim/dda/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the simulator as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  dda_simulate   Run a simulation and return its summary
  dda_arrivals   Show the hourly arrival schedule for a population

Tool calls are appended to ~/.dda/audit.jsonl. Logs go to stderr so they
never mix with the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

			noAudit, _ := cmd.Flags().GetBool("no-audit")
			auditDir := ""
			if !noAudit {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				auditDir = home
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "dda",
				Version:  version,
				AuditDir: auditDir,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().Bool("no-audit", false, "Do not write the tool-call audit log")
	return cmd
}
