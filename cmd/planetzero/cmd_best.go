package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/ranking"
	"github.com/pzlab/planetzero/internal/store"
	"github.com/pzlab/planetzero/internal/sweep"
	"github.com/spf13/cobra"
)

func newBestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best",
		Short: "Pick the best viable policy configuration at a horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			planPath, _ := cmd.Flags().GetString("plan")
			horizon, _ := cmd.Flags().GetInt("horizon")
			sweepID, _ := cmd.Flags().GetInt64("sweep-id")
			byMargin, _ := cmd.Flags().GetBool("by-margin")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			criteria := cfg.Selection.Criteria()

			var result *sweep.Result
			if sweepID > 0 {
				rs, err := store.Open(storePath(cfg))
				if err != nil {
					return err
				}
				defer rs.Close()
				result, err = rs.LoadResult(context.Background(), sweepID)
				if err != nil {
					return err
				}
			} else {
				var plan sweep.Plan
				if planPath != "" {
					plan, err = config.LoadPlan(planPath)
				} else {
					plan, err = config.DefaultPlan()
				}
				if err != nil {
					return err
				}
				if plan.Workers == 0 {
					plan.Workers = cfg.Workers
				}
				// Make sure the sweep actually produces the horizon we
				// are about to select at.
				if !containsInt(plan.Horizons, horizon) {
					plan.Horizons = append(plan.Horizons, horizon)
				}
				result, err = sweep.Run(plan)
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()

			if !containsInt(result.Horizons, horizon) {
				return fmt.Errorf("stored sweep has no horizon %d (re-run the sweep with it, or pick one of its horizons): %w", horizon, ranking.ErrUnknownHorizon)
			}

			if byMargin {
				table := ranking.BestByMargin(result, horizon, criteria)
				if jsonOut {
					return json.NewEncoder(w).Encode(table)
				}
				if len(table) == 0 {
					fmt.Fprintf(w, "No viable policy at horizon %d for any margin.\n", horizon)
					return nil
				}
				fmt.Fprintf(w, "%s\n", "margin  best policy            impact           BC   %U>0")
				for _, c := range table {
					fmt.Fprintf(w, "%6.0f  %-17s %12.1f %12.1f %6.0f\n",
						c.Margin, c.PolicyKey, c.Metrics.FinalImpact,
						c.Metrics.FinalBondCapital, c.Metrics.PctMonthsPositiveUtility*100)
				}
				return nil
			}

			best, err := ranking.SelectBest(result, horizon, criteria)
			if errors.Is(err, ranking.ErrNoViableCandidate) {
				if jsonOut {
					return json.NewEncoder(w).Encode(map[string]any{"viable": false, "horizon": horizon})
				}
				fmt.Fprintf(w, "No viable policy at horizon %d: no candidate kept positive utility in at least %.0f%% of months.\n",
					horizon, criteria.MinPositiveUtilityShare*100)
				return nil
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(w).Encode(map[string]any{"viable": true, "best": best})
			}
			fmt.Fprintf(w, "Best at horizon %d: %s (margin %.0f)\n", horizon, best.PolicyKey, best.Margin)
			fmt.Fprintf(w, "  cumulative impact  %12.1f\n", best.Metrics.FinalImpact)
			fmt.Fprintf(w, "  bond capital       %12.1f\n", best.Metrics.FinalBondCapital)
			fmt.Fprintf(w, "  FS coverage        %12.2f months\n", best.Metrics.FSCoverageMonths)
			fmt.Fprintf(w, "  months with U>0    %11.0f%%\n", best.Metrics.PctMonthsPositiveUtility*100)
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Path to a sweep plan YAML file (default: documented baseline sweep)")
	cmd.Flags().Int("horizon", 24, "Horizon in months at which to select")
	cmd.Flags().Int64("sweep-id", 0, "Select from a stored sweep instead of re-running")
	cmd.Flags().Bool("by-margin", false, "Print the best policy per margin instead of a single pick")
	return cmd
}
