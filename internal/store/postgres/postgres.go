// Package postgres provides a RunStore backed by PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/store"
)

// Pool wraps a pgx connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a connection pool from a DSN and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	dataset TEXT NOT NULL DEFAULT '',
	strategy TEXT NOT NULL,
	storage_params JSONB NOT NULL,
	total_days INTEGER NOT NULL,
	total_profit DOUBLE PRECISION NOT NULL,
	total_cycles DOUBLE PRECISION NOT NULL,
	annual_profit DOUBLE PRECISION NOT NULL,
	annual_cycles DOUBLE PRECISION NOT NULL,
	final_energy_level DOUBLE PRECISION NOT NULL,
	actual_efficiency DOUBLE PRECISION NOT NULL,
	energy_efficiency DOUBLE PRECISION NOT NULL,
	npv DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS run_days (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	profit DOUBLE PRECISION NOT NULL,
	cycles DOUBLE PRECISION NOT NULL,
	charge_count INTEGER NOT NULL,
	discharge_count INTEGER NOT NULL,
	initial_energy_level DOUBLE PRECISION NOT NULL,
	final_energy_level DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS run_days_run_id_idx ON run_days (run_id);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	kind TEXT NOT NULL,
	start_index INTEGER NOT NULL,
	end_index INTEGER NOT NULL,
	start_energy_level DOUBLE PRECISION NOT NULL,
	end_energy_level DOUBLE PRECISION NOT NULL,
	energy_traded DOUBLE PRECISION NOT NULL,
	intervals INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS run_trades_run_id_idx ON run_trades (run_id);
`

const runColumns = `
	id, created_at, dataset, strategy, storage_params,
	total_days, total_profit, total_cycles, annual_profit, annual_cycles,
	final_energy_level, actual_efficiency, energy_efficiency, npv`

// Store is a PostgreSQL implementation of store.RunStore.
type Store struct {
	pool *Pool
}

// NewStore creates a run store on top of pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

var _ store.RunStore = (*Store)(nil)

// EnsureSchema creates the run tables if they do not exist yet. The DDL is
// idempotent, so it is safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure run schema: %w", err)
	}
	return nil
}

// SaveRun inserts the run with its days and trades in a single transaction.
func (s *Store) SaveRun(ctx context.Context, run *store.Run) error {
	if run == nil || run.ID == "" {
		return store.ErrInvalidRun
	}

	params, err := json.Marshal(run.Storage)
	if err != nil {
		return fmt.Errorf("marshal storage params: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (
			id, created_at, dataset, strategy, storage_params,
			total_days, total_profit, total_cycles, annual_profit, annual_cycles,
			final_energy_level, actual_efficiency, energy_efficiency, npv
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		run.ID, createdAt, run.Dataset, run.StrategyName, params,
		run.TotalDays, run.TotalProfit, run.TotalCycles, run.AnnualProfit, run.AnnualCycles,
		run.FinalLevel, run.ActualEfficiency, run.EnergyEfficiency, run.NPV,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return store.ErrDuplicateID
		}
		return fmt.Errorf("insert run: %w", err)
	}

	for _, day := range run.Days {
		_, err := tx.Exec(ctx, `
			INSERT INTO run_days (
				run_id, date, profit, cycles, charge_count, discharge_count,
				initial_energy_level, final_energy_level
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			run.ID, day.Date, day.Profit, day.Cycles, day.ChargeCount, day.DischargeCount,
			day.InitialLevel, day.FinalLevel,
		)
		if err != nil {
			return fmt.Errorf("insert run day: %w", err)
		}
	}

	for _, trade := range run.Trades {
		_, err := tx.Exec(ctx, `
			INSERT INTO run_trades (
				run_id, date, kind, start_index, end_index,
				start_energy_level, end_energy_level, energy_traded, intervals
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			run.ID, trade.Date, string(trade.Kind), trade.StartIndex, trade.EndIndex,
			trade.StartEnergy, trade.EndEnergy, trade.EnergyMWh, trade.Intervals,
		)
		if err != nil {
			return fmt.Errorf("insert run trade: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetRun retrieves a run with its days and trades. Returns ErrNotFound if the
// id does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*store.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+runColumns+` FROM runs WHERE id = $1`, id)
	rec, err := scanRunRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}

	days, err := s.loadDays(ctx, id)
	if err != nil {
		return nil, err
	}
	trades, err := s.loadTrades(ctx, id)
	if err != nil {
		return nil, err
	}

	return &store.Run{RunRecord: rec, Days: days, Trades: trades}, nil
}

// ListRuns retrieves run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	query := `SELECT` + runColumns + ` FROM runs ORDER BY created_at DESC, id`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.pool.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []store.RunRecord
	for rows.Next() {
		rec, err := scanRunRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return records, nil
}

// DeleteRun removes a run. Days and trades are removed by the cascade.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) loadDays(ctx context.Context, id string) ([]store.DayRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, profit, cycles, charge_count, discharge_count,
			initial_energy_level, final_energy_level
		FROM run_days
		WHERE run_id = $1
		ORDER BY date
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run days: %w", err)
	}
	defer rows.Close()

	var days []store.DayRecord
	for rows.Next() {
		var day store.DayRecord
		err := rows.Scan(&day.Date, &day.Profit, &day.Cycles, &day.ChargeCount,
			&day.DischargeCount, &day.InitialLevel, &day.FinalLevel)
		if err != nil {
			return nil, fmt.Errorf("scan run day row: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run day rows: %w", err)
	}
	return days, nil
}

func (s *Store) loadTrades(ctx context.Context, id string) ([]store.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, kind, start_index, end_index,
			start_energy_level, end_energy_level, energy_traded, intervals
		FROM run_trades
		WHERE run_id = $1
		ORDER BY date, start_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run trades: %w", err)
	}
	defer rows.Close()

	var trades []store.TradeRecord
	for rows.Next() {
		var (
			trade store.TradeRecord
			kind  string
		)
		err := rows.Scan(&trade.Date, &kind, &trade.StartIndex, &trade.EndIndex,
			&trade.StartEnergy, &trade.EndEnergy, &trade.EnergyMWh, &trade.Intervals)
		if err != nil {
			return nil, fmt.Errorf("scan run trade row: %w", err)
		}
		trade.Kind = model.TransactionKind(kind)
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run trade rows: %w", err)
	}
	return trades, nil
}

// scanRunRecord scans a single runs row. Works for both QueryRow results and
// rows from a listing query.
func scanRunRecord(row pgx.Row) (store.RunRecord, error) {
	var (
		rec    store.RunRecord
		params []byte
	)
	err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.Dataset, &rec.StrategyName, &params,
		&rec.TotalDays, &rec.TotalProfit, &rec.TotalCycles, &rec.AnnualProfit, &rec.AnnualCycles,
		&rec.FinalLevel, &rec.ActualEfficiency, &rec.EnergyEfficiency, &rec.NPV,
	)
	if err != nil {
		return store.RunRecord{}, err
	}
	if err := json.Unmarshal(params, &rec.Storage); err != nil {
		return store.RunRecord{}, fmt.Errorf("unmarshal storage params: %w", err)
	}
	return rec, nil
}

// PostgreSQL error code for unique constraint violations.
const pgErrUniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
