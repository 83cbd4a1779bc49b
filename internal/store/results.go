package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/sweep"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver
)

// ResultStore persists sweep summary tables in a SQLite database.
type ResultStore struct {
	db   *sql.DB
	path string
}

// SweepInfo describes one stored sweep.
type SweepInfo struct {
	ID        int64
	Label     string
	CreatedAt time.Time
}

// Open opens (creating if needed) a result store at path. Parent directories
// are created as needed.
func Open(path string) (*ResultStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ResultStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

// SaveSweep stores the scenario and the complete summary table of one sweep
// and returns the new sweep's id.
func (s *ResultStore) SaveSweep(ctx context.Context, label string, scenario model.ScenarioConfig, result *sweep.Result) (int64, error) {
	scenarioYAML, err := yaml.Marshal(scenario)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal scenario: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sweeps (label, scenario_yaml, created_at) VALUES (?, ?, ?)`,
		label, string(scenarioYAML), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sweep: %w", err)
	}
	sweepID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sweep id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO summaries (
			sweep_id, policy_key, margin, horizon,
			final_impact, final_bond_capital, final_survival_fund,
			fs_coverage_months, fs_target_months,
			pct_months_positive_utility, time_to_first_impact,
			employees_end, hires_total, active_people_end, margin_end,
			avg_utility, avg_positive_utility, last_p, last_phase
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for _, cell := range result.Cells {
		m := cell.Metrics
		if _, err := stmt.ExecContext(ctx,
			sweepID, cell.PolicyKey, cell.Margin, cell.Horizon,
			m.FinalImpact, m.FinalBondCapital, m.FinalSurvivalFund,
			m.FSCoverageMonths, m.FSTargetMonths,
			m.PctMonthsPositiveUtility, m.TimeToFirstImpact,
			m.EmployeesEnd, m.HiresTotal, m.ActivePeopleEnd, m.MarginEnd,
			m.AvgUtility, m.AvgPositiveUtility, m.LastP, m.LastPhase,
		); err != nil {
			return 0, fmt.Errorf("failed to insert summary for %s/%.2f/%d: %w", cell.PolicyKey, cell.Margin, cell.Horizon, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}
	return sweepID, nil
}

// ListSweeps returns stored sweeps, newest first.
func (s *ResultStore) ListSweeps(ctx context.Context) ([]SweepInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, created_at FROM sweeps ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []SweepInfo
	for rows.Next() {
		var info SweepInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan sweep row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			info.CreatedAt = t
		}
		sweeps = append(sweeps, info)
	}
	return sweeps, rows.Err()
}

// LoadScenario returns the scenario a stored sweep was run with.
func (s *ResultStore) LoadScenario(ctx context.Context, sweepID int64) (model.ScenarioConfig, error) {
	var scenarioYAML string
	err := s.db.QueryRowContext(ctx,
		`SELECT scenario_yaml FROM sweeps WHERE id = ?`, sweepID,
	).Scan(&scenarioYAML)
	if err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("failed to load sweep %d: %w", sweepID, err)
	}

	var scenario model.ScenarioConfig
	if err := yaml.Unmarshal([]byte(scenarioYAML), &scenario); err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("failed to parse stored scenario: %w", err)
	}
	return scenario, nil
}

// LoadResult reconstructs the summary table of a stored sweep.
func (s *ResultStore) LoadResult(ctx context.Context, sweepID int64) (*sweep.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy_key, margin, horizon,
			final_impact, final_bond_capital, final_survival_fund,
			fs_coverage_months, fs_target_months,
			pct_months_positive_utility, time_to_first_impact,
			employees_end, hires_total, active_people_end, margin_end,
			avg_utility, avg_positive_utility, last_p, last_phase
		FROM summaries WHERE sweep_id = ?
		ORDER BY policy_key, margin, horizon`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	result := &sweep.Result{}
	horizons := make(map[int]bool)
	for rows.Next() {
		var cell sweep.Cell
		m := &cell.Metrics
		if err := rows.Scan(
			&cell.PolicyKey, &cell.Margin, &cell.Horizon,
			&m.FinalImpact, &m.FinalBondCapital, &m.FinalSurvivalFund,
			&m.FSCoverageMonths, &m.FSTargetMonths,
			&m.PctMonthsPositiveUtility, &m.TimeToFirstImpact,
			&m.EmployeesEnd, &m.HiresTotal, &m.ActivePeopleEnd, &m.MarginEnd,
			&m.AvgUtility, &m.AvgPositiveUtility, &m.LastP, &m.LastPhase,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		m.Horizon = cell.Horizon
		if !horizons[cell.Horizon] {
			horizons[cell.Horizon] = true
			result.Horizons = append(result.Horizons, cell.Horizon)
		}
		result.Cells = append(result.Cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Ints(result.Horizons)
	return result, nil
}
