// Package store provides persistence for invocation records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tandemkit/tandem/internal/envelope"
)

// Store records one row per adapter invocation.
type Store struct {
	db *sql.DB
}

// NewStore creates a store for invocation persistence.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Invocation is one recorded execution.
type Invocation struct {
	ID        string
	CreatedAt string
	Adapter   string
	Status    string
	Prompt    string
	Content   string
	Error     string
	Usage     envelope.Usage
	LatencyMS int64
}

// Record inserts an invocation row.
func (s *Store) Record(ctx context.Context, inv Invocation) error {
	if inv.CreatedAt == "" {
		inv.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO invocations(
		id, created_at, adapter, status, prompt, content, error,
		prompt_tokens, completion_tokens, total_tokens, latency_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CreatedAt, inv.Adapter, inv.Status, inv.Prompt, inv.Content, inv.Error,
		inv.Usage.PromptTokens, inv.Usage.CompletionTokens, inv.Usage.TotalTokens, inv.LatencyMS)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// List returns the most recent invocations, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Invocation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, adapter, status, prompt, content, error,
		prompt_tokens, completion_tokens, total_tokens, latency_ms
		FROM invocations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.CreatedAt, &inv.Adapter, &inv.Status, &inv.Prompt,
			&inv.Content, &inv.Error, &inv.Usage.PromptTokens, &inv.Usage.CompletionTokens,
			&inv.Usage.TotalTokens, &inv.LatencyMS); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return out, nil
}

// Get returns a single invocation by id.
func (s *Store) Get(ctx context.Context, id string) (Invocation, error) {
	var inv Invocation
	err := s.db.QueryRowContext(ctx, `SELECT id, created_at, adapter, status, prompt, content, error,
		prompt_tokens, completion_tokens, total_tokens, latency_ms
		FROM invocations WHERE id=?`, id).Scan(&inv.ID, &inv.CreatedAt, &inv.Adapter, &inv.Status,
		&inv.Prompt, &inv.Content, &inv.Error, &inv.Usage.PromptTokens, &inv.Usage.CompletionTokens,
		&inv.Usage.TotalTokens, &inv.LatencyMS)
	if err != nil {
		return Invocation{}, fmt.Errorf("get invocation %s: %w", id, err)
	}
	return inv, nil
}
