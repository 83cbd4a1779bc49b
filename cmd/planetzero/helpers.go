package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
	"github.com/spf13/cobra"
)

// loadConfig loads the application config, honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadScenario loads a scenario file or the documented defaults.
func loadScenario(path string) (model.ScenarioConfig, error) {
	if path == "" {
		return model.DefaultScenario(), nil
	}
	return config.LoadScenario(path)
}

// parsePolicy turns a --policy flag value into a resolver.
// Accepted forms: "auto", "auto:<p4max>", or a fixed share like "0.70".
func parsePolicy(spec string) (policy.Reinvestment, error) {
	switch {
	case spec == "" || spec == "auto":
		return policy.NewDefaultAdaptive(policy.DefaultP4Max)
	case strings.HasPrefix(spec, "auto:"):
		p4Max, err := strconv.ParseFloat(strings.TrimPrefix(spec, "auto:"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid adaptive policy %q: %w", spec, err)
		}
		return policy.NewDefaultAdaptive(p4Max)
	default:
		alpha, err := strconv.ParseFloat(spec, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid policy %q (expected 'auto', 'auto:<p4max>', or a share in [0,1])", spec)
		}
		return policy.NewFixedShare(alpha)
	}
}

// storePath resolves the result store path from config, defaulting to
// .planetzero/results.db under the working directory.
func storePath(cfg *config.Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return ".planetzero/results.db"
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
