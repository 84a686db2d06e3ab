// Package xpgx glues squirrel builders to a pgx connection pool.
package xpgx

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of *pgxpool.Pool the store needs. pgxmock pools satisfy it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type Pool struct {
	Querier
}

func NewPool(q Querier) *Pool {
	return &Pool{Querier: q}
}

// Connect opens a pgx pool and checks it is reachable.
func Connect(ctx context.Context, url string, maxConns int32) (*Pool, *pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return NewPool(pool), pool, nil
}

// Execx runs a builder that returns no rows.
func (p *Pool) Execx(ctx context.Context, query sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("ToSql: %w", err)
	}

	return p.Exec(ctx, sql, args...)
}

// QueryRowx runs a builder expected to return a single row.
func (p *Pool) QueryRowx(ctx context.Context, query sq.Sqlizer) pgx.Row {
	sql, args, err := query.ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("ToSql: %w", err)}
	}

	return p.QueryRow(ctx, sql, args...)
}

// Selectx scans every row of the builder into T by `db` tag.
func Selectx[T any](ctx context.Context, p *Pool, query sq.Sqlizer) ([]T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ToSql: %w", err)
	}

	rows, err := p.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	selected, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, err
	}
	if selected == nil {
		selected = []T{}
	}

	return selected, nil
}

// Getx scans exactly one row into T. pgx.ErrNoRows is returned when nothing matches.
func Getx[T any](ctx context.Context, p *Pool, query sq.Sqlizer) (*T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ToSql: %w", err)
	}

	rows, err := p.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	selected, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, err
	}

	return selected, nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
