package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dda-sim/dda/internal/constants"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]any{
				"version":        version,
				"commit":         commit,
				"date":           date,
				"go":             runtime.Version(),
				"corridor_width": constants.CorridorWidth,
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dda %s (commit %s, built %s, %s)\n", version, commit, date, runtime.Version())
			return nil
		},
	}
}
