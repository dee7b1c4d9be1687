package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// Repository implements ports.SetupRepository and ports.ResultRepository
// using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (creating if needed) the backtest database.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/break_and_retest.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency under the session workers.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_setups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		session TEXT NOT NULL,
		direction TEXT NOT NULL,
		range_high REAL NOT NULL,
		range_low REAL NOT NULL,
		breakout_level REAL NOT NULL,
		breakout_time TIMESTAMP NOT NULL,
		retest_time TIMESTAMP NOT NULL,
		retest_pierce REAL NOT NULL,
		grade_breakout TEXT NOT NULL,
		grade_retest TEXT NOT NULL,
		grade_ignition TEXT NOT NULL,
		grade_reward_risk TEXT NOT NULL,
		grade_overall TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		session TEXT NOT NULL,
		direction TEXT NOT NULL,
		outcome TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		shares INTEGER NOT NULL,
		pnl REAL NOT NULL,
		grade TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trade_setups_symbol_session ON trade_setups (symbol, session);
	CREATE INDEX IF NOT EXISTS idx_trade_results_symbol_entry_time ON trade_results (symbol, entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- SetupRepository Implementation ---

// CreateSetup saves a setup record and returns its assigned ID.
func (r *Repository) CreateSetup(ctx context.Context, setup *domain.TradeSetup) (int64, error) {
	const query = `
	INSERT INTO trade_setups (symbol, session, direction, range_high, range_low,
	                          breakout_level, breakout_time, retest_time, retest_pierce,
	                          grade_breakout, grade_retest, grade_ignition, grade_reward_risk, grade_overall)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		setup.Symbol, setup.Session, string(setup.Breakout.Direction),
		setup.Range.High, setup.Range.Low,
		setup.Breakout.Level, setup.Breakout.Bar.OpenTime, setup.Retest.Bar.OpenTime, setup.Retest.PierceDepth,
		setup.Grades.Breakout.String(), setup.Grades.Retest.String(),
		setup.Grades.Ignition.String(), setup.Grades.RewardRisk.String(), setup.Overall.String())
	if err != nil {
		return 0, fmt.Errorf("failed to insert setup for symbol %s: %w", setup.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for setup %s: %w", setup.Symbol, err)
	}
	r.logger.Debug(ctx, "Setup stored", map[string]interface{}{"setupID": id, "symbol": setup.Symbol, "session": setup.Session})
	return id, nil
}

// CountSetupsBySymbol counts stored setups for a symbol.
func (r *Repository) CountSetupsBySymbol(ctx context.Context, symbol string) (int, error) {
	const query = `SELECT COUNT(*) FROM trade_setups WHERE symbol = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count setups for symbol %s: %w", symbol, err)
	}
	return count, nil
}

// --- ResultRepository Implementation ---

// CreateResult saves a trade result and returns its assigned ID.
func (r *Repository) CreateResult(ctx context.Context, res *domain.TradeResult) (int64, error) {
	const query = `
	INSERT INTO trade_results (symbol, session, direction, outcome, entry_price, exit_price,
	                           entry_time, exit_time, shares, pnl, grade)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		res.Symbol, res.Session, string(res.Direction), string(res.Outcome),
		res.Entry, res.ExitPrice, res.EntryTime, res.ExitTime, res.Shares, res.PNL, res.Grade.String())
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade result for symbol %s: %w", res.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade result %s: %w", res.Symbol, err)
	}
	res.ID = id
	r.logger.Debug(ctx, "Trade result stored", map[string]interface{}{"resultID": id, "symbol": res.Symbol, "pnl": res.PNL})
	return id, nil
}

// FindResultsBySymbol retrieves the most recent results for a symbol, up to a limit.
func (r *Repository) FindResultsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.TradeResult, error) {
	const query = `
	SELECT id, symbol, session, direction, outcome, entry_price, exit_price,
	       entry_time, exit_time, shares, pnl, grade
	FROM trade_results
	WHERE symbol = ? ORDER BY entry_time DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade results for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	results := make([]*domain.TradeResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade result during FindResultsBySymbol: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade result rows: %w", err)
	}
	return results, nil
}

// CountByOutcome tallies stored results per terminal outcome.
func (r *Repository) CountByOutcome(ctx context.Context) (map[domain.Outcome]int, error) {
	const query = `SELECT outcome, COUNT(*) FROM trade_results GROUP BY outcome`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count results by outcome: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Outcome]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[domain.Outcome(outcome)] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcome rows: %w", err)
	}
	return counts, nil
}

// GetTotalPNL sums realized profit and loss across all stored results.
func (r *Repository) GetTotalPNL(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM trade_results`
	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum total PNL: %w", err)
	}
	return total, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanResult scans a row into a domain.TradeResult struct.
func scanResult(s scanner) (*domain.TradeResult, error) {
	res := &domain.TradeResult{}
	var direction, outcome, grade string
	err := s.Scan(
		&res.ID, &res.Symbol, &res.Session, &direction, &outcome,
		&res.Entry, &res.ExitPrice, &res.EntryTime, &res.ExitTime,
		&res.Shares, &res.PNL, &grade)
	if err != nil {
		return nil, err
	}
	res.Direction = domain.Direction(direction)
	res.Outcome = domain.Outcome(outcome)
	parsed, err := domain.ParseGrade(grade)
	if err != nil {
		return nil, fmt.Errorf("stored grade: %w", err)
	}
	res.Grade = parsed
	return res, nil
}
