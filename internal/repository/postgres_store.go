package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
)

// PostgresStore implements Store on a pgx connection pool. The
// bot_control table holds the singleton control record; trades and
// performance snapshots are append-only.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres. The pool is pinged so an
// unreachable database fails process startup instead of first use.
func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bot_control (
		id BIGSERIAL PRIMARY KEY,
		is_running BOOLEAN NOT NULL DEFAULT TRUE,
		active_strategy TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS executed_trades (
		id BIGSERIAL PRIMARY KEY,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		qty DOUBLE PRECISION NOT NULL,
		signal TEXT NOT NULL,
		strategy TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS executed_trades_created_at_idx ON executed_trades (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS strategy_performance (
		id BIGSERIAL PRIMARY KEY,
		strategy TEXT NOT NULL,
		portfolio_value DOUBLE PRECISION NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Init ensures the schema exists.
func (s *PostgresStore) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// LoadBotState reads the singleton control record, creating it with
// running=true when absent.
func (s *PostgresStore) LoadBotState(ctx context.Context) (*models.BotState, error) {
	state := &models.BotState{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, is_running, active_strategy FROM bot_control ORDER BY id LIMIT 1`,
	).Scan(&state.ID, &state.Running, &state.ActiveStrategy)

	if errors.Is(err, pgx.ErrNoRows) {
		state.Running = true
		err = s.pool.QueryRow(ctx,
			`INSERT INTO bot_control (is_running) VALUES (TRUE) RETURNING id`,
		).Scan(&state.ID)
		if err != nil {
			return nil, fmt.Errorf("create bot state: %w", err)
		}
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bot state: %w", err)
	}
	return state, nil
}

// SaveBotState writes the singleton control record.
func (s *PostgresStore) SaveBotState(ctx context.Context, state *models.BotState) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bot_control SET is_running = $1, active_strategy = $2`,
		state.Running, state.ActiveStrategy)
	if err != nil {
		return fmt.Errorf("save bot state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO bot_control (is_running, active_strategy) VALUES ($1, $2)`,
			state.Running, state.ActiveStrategy)
		if err != nil {
			return fmt.Errorf("create bot state: %w", err)
		}
	}
	return nil
}

// InsertTrade appends one executed trade record.
func (s *PostgresStore) InsertTrade(ctx context.Context, trade *models.ExecutedTrade) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO executed_trades (symbol, side, price, qty, signal, strategy, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trade.Symbol, trade.Side, trade.Price, trade.Qty, trade.Signal, trade.Strategy, trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertPerformance appends one per-tick performance snapshot.
func (s *PostgresStore) InsertPerformance(ctx context.Context, perf *models.StrategyPerformance) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO strategy_performance (strategy, portfolio_value, captured_at)
		 VALUES ($1, $2, $3)`,
		perf.Strategy, perf.PortfolioValue, perf.CapturedAt)
	if err != nil {
		return fmt.Errorf("insert performance: %w", err)
	}
	return nil
}

// RecentTrades returns the most recent trades, newest first.
func (s *PostgresStore) RecentTrades(ctx context.Context, limit int) ([]*models.ExecutedTrade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, symbol, side, price, qty, signal, strategy, created_at
		 FROM executed_trades ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*models.ExecutedTrade, 0, limit)
	for rows.Next() {
		t := &models.ExecutedTrade{}
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Side, &t.Price, &t.Qty, &t.Signal, &t.Strategy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Health pings the database.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ repository.Store = (*PostgresStore)(nil)
