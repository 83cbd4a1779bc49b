package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pzlab/planetzero/internal/engine"
	"github.com/pzlab/planetzero/internal/logging"
	"github.com/pzlab/planetzero/internal/sweep"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one month-by-month simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			horizon, _ := cmd.Flags().GetInt("horizon")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			policySpec, _ := cmd.Flags().GetString("policy")
			showRecords, _ := cmd.Flags().GetBool("records")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			scenario, err := loadScenario(scenarioPath)
			if err != nil {
				return err
			}
			pol, err := parsePolicy(policySpec)
			if err != nil {
				return err
			}

			logger.Debug("starting run", "policy", pol.Name(), "horizon", horizon)

			records, err := engine.RunScenario(scenario, pol, horizon)
			if err != nil {
				return err
			}
			summary := sweep.Reduce(records, horizon)

			// Trace every step record at debug level and above.
			tracer := logging.NewTraceLogger(".planetzero", cfg.Logging.Level)
			defer tracer.Close()
			for _, rec := range records {
				tracer.LogStep(pol.Name(), rec)
			}

			if jsonOut {
				out := map[string]any{"summary": summary}
				if showRecords {
					out["records"] = records
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Policy %s over %d months:\n", pol.Name(), horizon)
			fmt.Fprintf(w, "  cumulative impact     %12.2f\n", summary.FinalImpact)
			fmt.Fprintf(w, "  bond capital          %12.2f\n", summary.FinalBondCapital)
			fmt.Fprintf(w, "  survival fund         %12.2f (%.1f months, target %d)\n",
				summary.FinalSurvivalFund, summary.FSCoverageMonths, summary.FSTargetMonths)
			fmt.Fprintf(w, "  months with U>0       %11.0f%%\n", summary.PctMonthsPositiveUtility*100)
			fmt.Fprintf(w, "  first impact month    %12d\n", summary.TimeToFirstImpact)
			fmt.Fprintf(w, "  employees / hires     %9d / %d\n", summary.EmployeesEnd, summary.HiresTotal)
			fmt.Fprintf(w, "  active people         %12.1f\n", summary.ActivePeopleEnd)
			fmt.Fprintf(w, "  margin                %12.2f\n", summary.MarginEnd)
			if showRecords {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "month      U        p    BC_in   impact   FS_cov  frozen")
				for _, rec := range records {
					fmt.Fprintf(w, "%5d %8.1f %8.3f %8.1f %8.1f %8.2f  %v\n",
						rec.Month, rec.Utility, rec.P, rec.BondIn, rec.ImpactAmount, rec.FSCoverageMonths, rec.Frozen)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("horizon", 24, "Number of months to simulate")
	cmd.Flags().String("scenario", "", "Path to a scenario YAML file")
	cmd.Flags().String("policy", "auto", "Reinvestment policy: 'auto', 'auto:<p4max>', or a fixed share like 0.70")
	cmd.Flags().Bool("records", false, "Print the full per-month record table")
	return cmd
}
