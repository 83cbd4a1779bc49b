package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/logging"
	"github.com/pzlab/planetzero/internal/store"
	"github.com/pzlab/planetzero/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a policy/margin/horizon sweep and print the summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			planPath, _ := cmd.Flags().GetString("plan")
			save, _ := cmd.Flags().GetBool("save")
			label, _ := cmd.Flags().GetString("label")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

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

			logger.Debug("starting sweep",
				"policies", len(plan.Policies), "margins", len(plan.Margins), "horizons", len(plan.Horizons))

			result, err := sweep.Run(plan)
			if err != nil {
				return err
			}

			if save {
				rs, err := store.Open(storePath(cfg))
				if err != nil {
					return err
				}
				defer rs.Close()
				id, err := rs.SaveSweep(context.Background(), label, plan.Scenario, result)
				if err != nil {
					return err
				}
				logger.Info("sweep saved", "id", id, "cells", len(result.Cells))
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", "policy            margin horizon       impact           BC       FS_cov   %U>0")
			for _, c := range result.Cells {
				m := c.Metrics
				fmt.Fprintf(w, "%-17s %6.0f %7d %12.1f %12.1f %12.2f %6.0f\n",
					c.PolicyKey, c.Margin, c.Horizon,
					m.FinalImpact, m.FinalBondCapital, m.FSCoverageMonths,
					m.PctMonthsPositiveUtility*100)
			}
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Path to a sweep plan YAML file (default: documented baseline sweep)")
	cmd.Flags().Bool("save", false, "Persist the summary table to the result store")
	cmd.Flags().String("label", "", "Label for the saved sweep")
	return cmd
}

func newSweepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweeps",
		Short: "List sweeps stored in the result store",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rs, err := store.Open(storePath(cfg))
			if err != nil {
				return err
			}
			defer rs.Close()

			sweeps, err := rs.ListSweeps(context.Background())
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sweeps)
			}

			w := cmd.OutOrStdout()
			if len(sweeps) == 0 {
				fmt.Fprintln(w, "No stored sweeps. Run 'planetzero sweep --save' first.")
				return nil
			}
			for _, info := range sweeps {
				label := info.Label
				if label == "" {
					label = "(unlabeled)"
				}
				fmt.Fprintf(w, "%4d  %s  %s\n", info.ID, info.CreatedAt.Format("2006-01-02 15:04"), label)
			}
			return nil
		},
	}
}
