package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trip_sessions (
			key TEXT PRIMARY KEY,
			turns JSONB NOT NULL,
			last_payload JSONB,
			version BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Record, error) {
	var (
		turnsJSON []byte
		payload   []byte
		version   int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT turns, last_payload, version FROM trip_sessions WHERE key=$1`,
		key,
	).Scan(&turnsJSON, &payload, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query session: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(turnsJSON, &turns); err != nil {
		return Record{}, fmt.Errorf("decode turns: %w", err)
	}

	return Record{Turns: turns, Payload: payload, Version: version}, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, rec Record, expected int64) error {
	turnsJSON, err := json.Marshal(rec.Turns)
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}

	var payload any
	if rec.Payload != nil {
		payload = []byte(rec.Payload)
	}

	if expected == 0 {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO trip_sessions (key, turns, last_payload, version)
			 VALUES ($1, $2, $3, 1)
			 ON CONFLICT (key) DO NOTHING`,
			key, turnsJSON, payload,
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return nil
	}

	// COALESCE keeps a previously stored payload when this turn produced none.
	tag, err := s.pool.Exec(ctx,
		`UPDATE trip_sessions
		 SET turns=$2, last_payload=COALESCE($3, last_payload), version=version+1, updated_at=now()
		 WHERE key=$1 AND version=$4`,
		key, turnsJSON, payload, expected,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
