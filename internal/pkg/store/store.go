package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// Reader serves every read of the query layer.
type Reader interface {
	// ListFacts returns one page of non-deleted facts, newest first, and the total count.
	ListFacts(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.DetailRow, int64, error)
	// Aggregate sums the filtered facts per distinct key of dims, ascending by dims.
	Aggregate(ctx context.Context, filter domain.Filter, dims []domain.Dimension) ([]domain.GroupRow, error)
}

// Writer is used by the ETL only.
type Writer interface {
	ResolveFecha(ctx context.Context, fecha domain.Fecha) (int64, error)
	ResolveLocation(ctx context.Context, loc domain.Location) (int64, error)
	ResolveEvent(ctx context.Context, evento string) (int64, error)
	// InsertFact reports false when a fact with the same fingerprint is already stored.
	InsertFact(ctx context.Context, fact *domain.Fact) (bool, error)
	InsertRun(ctx context.Context, run *domain.Run) error
}

type Store interface {
	Reader
	Writer
	Ping(ctx context.Context) error
}

type store struct {
	pool       *Pool
	newBackOff func() backoff.BackOff
}

func NewStore(pool *Pool) Store {
	return &store{
		pool:       pool,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return backoff.WithMaxRetries(b, 5)
}

func (s *store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
