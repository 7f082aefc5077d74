package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dda-sim/dda/internal/arrival"
)

func newArrivalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrivals",
		Short: "Show the hourly arrival schedule for a population",
		Long: `Print how many agents are activated at the start of each hour.

The schedule follows a normal curve centred on hour 12 (standard deviation
6 hours), shared out across the population and rounded per bucket.

Examples:
  dda arrivals                 # Population from config
  dda arrivals --agents 1200   # Explicit population
  dda arrivals --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			agents, _ := cmd.Flags().GetInt("agents")
			if !cmd.Flags().Changed("agents") {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				agents = cfg.Simulation.Agents
			}

			buckets := arrival.Distribution(agents)
			total := arrival.Total(buckets)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"agents":  agents,
					"buckets": buckets,
					"total":   total,
				})
			}

			peak := 0
			for _, n := range buckets {
				peak = max(peak, n)
			}
			fmt.Fprintf(out, "Arrivals for %d agents (total %d):\n\n", agents, total)
			for hour, n := range buckets {
				fmt.Fprintf(out, "  %02d:00  %4d  %s\n", hour, n, bar(n, peak, 40))
			}
			return nil
		},
	}

	cmd.Flags().Int("agents", 0, "Population size (default from config)")
	return cmd
}

// bar renders n as a run of '#' scaled so peak fills width.
func bar(n, peak, width int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	return strings.Repeat("#", max(1, n*width/peak))
}
