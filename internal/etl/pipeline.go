// Package etl cleans raw aid records and loads them into the star schema.
package etl

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/logger"
	"github.com/ougirez/ayudas/internal/pkg/metrics"
	"github.com/ougirez/ayudas/internal/pkg/store"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Report summarises one run. Every source row is counted exactly once in
// Inserted, Duplicates or Skipped.
type Report struct {
	domain.Run
	Errors []RowError `json:"errors"`
}

// SkippedBy counts skipped rows per reason.
func (r *Report) SkippedBy() map[string]int {
	out := make(map[string]int)
	for _, e := range r.Errors {
		out[e.Reason]++
	}
	return out
}

// Log is the full account of a run: counts, skips per reason and every row error.
type Log struct {
	domain.Run
	SkippedBy map[string]int `json:"skipped_by"`
	Errors    []RowError     `json:"errors"`
}

func (r *Report) Log() Log {
	errs := r.Errors
	if errs == nil {
		errs = []RowError{}
	}
	return Log{Run: r.Run, SkippedBy: r.SkippedBy(), Errors: errs}
}

func (r *Report) skip(e RowError) {
	r.Skipped++
	r.Errors = append(r.Errors, e)
	metrics.ETLRowsTotal.WithLabelValues(e.Reason).Inc()
}

// Notifier announces a finished run.
type Notifier interface {
	Publish(ctx context.Context, report *Report) error
}

// Invalidator drops cached query results once new facts are loaded.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Pipeline struct {
	store       store.Writer
	notifier    Notifier
	invalidator Invalidator
	now         func() time.Time
}

type Option func(*Pipeline)

func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

func WithInvalidator(i Invalidator) Option {
	return func(p *Pipeline) { p.invalidator = i }
}

func NewPipeline(w store.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{store: w, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads src. The whole source is read before the first write, so a SourceError
// leaves the database untouched. Row level problems end up in the report.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Report, error) {
	report := &Report{
		Run: domain.Run{
			ID:        uuid.New(),
			Source:    src.Name(),
			StartedAt: p.now().UTC(),
		},
		Errors: []RowError{},
	}
	ctx = logger.WithFields(ctx, zap.String("run_id", report.ID.String()), zap.String("source", report.Source))

	records, err := src.Records(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "read source")
	}
	report.Total = len(records)
	logger.Infof(ctx, "etl: %d rows read", report.Total)

	dims := newDimensionCache(p.store)
	seen := make(map[string]int)

	for _, rec := range records {
		if err = ctx.Err(); err != nil {
			return report, eris.Wrap(err, "etl run cancelled")
		}

		row, rowErr := clean(ctx, rec)
		if rowErr != nil {
			report.skip(*rowErr)
			continue
		}

		content := row.content()
		fact, err := dims.fact(ctx, row)
		if err != nil {
			logger.Errorf(ctx, "row %d: %s", row.line, err.Error())
			report.skip(RowError{Row: row.line, Reason: ReasonResolveFailed, Detail: err.Error()})
			continue
		}
		fact.Fingerprint = fingerprint(content, seen[content])
		seen[content]++

		inserted, err := p.store.InsertFact(ctx, fact)
		if err != nil {
			logger.Errorf(ctx, "row %d: %s", row.line, err.Error())
			report.skip(RowError{Row: row.line, Reason: ReasonInsertFailed, Detail: err.Error()})
			continue
		}
		if inserted {
			report.Inserted++
			metrics.ETLRowsTotal.WithLabelValues("inserted").Inc()
		} else {
			report.Duplicates++
			metrics.ETLRowsTotal.WithLabelValues("duplicate").Inc()
		}
	}

	report.FinishedAt = p.now().UTC()
	metrics.ETLRunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	p.finish(ctx, report)

	return report, nil
}

// finish records and announces the run. Failures here never undo loaded facts.
func (p *Pipeline) finish(ctx context.Context, report *Report) {
	logger.Infof(ctx, "etl: done, inserted=%d duplicates=%d skipped=%d",
		report.Inserted, report.Duplicates, report.Skipped)

	if err := p.store.InsertRun(ctx, &report.Run); err != nil {
		logger.Errorf(ctx, "etl: record run: %s", err.Error())
	}
	if p.invalidator != nil && report.Inserted > 0 {
		if err := p.invalidator.Invalidate(ctx); err != nil {
			logger.Errorf(ctx, "etl: invalidate cache: %s", err.Error())
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Publish(ctx, report); err != nil {
			logger.Errorf(ctx, "etl: publish report: %s", err.Error())
		}
	}
}

// dimensionCache remembers resolved dimension ids for the length of a run.
type dimensionCache struct {
	store     store.Writer
	fechas    map[time.Time]int64
	locations map[domain.Location]int64
	events    map[string]int64
}

func newDimensionCache(w store.Writer) *dimensionCache {
	return &dimensionCache{
		store:     w,
		fechas:    make(map[time.Time]int64),
		locations: make(map[domain.Location]int64),
		events:    make(map[string]int64),
	}
}

func (c *dimensionCache) fact(ctx context.Context, row *cleanRow) (*domain.Fact, error) {
	fechaID, ok := c.fechas[row.fecha]
	if !ok {
		id, err := c.store.ResolveFecha(ctx, domain.NewFecha(row.fecha))
		if err != nil {
			return nil, eris.Wrap(err, "resolve fecha")
		}
		c.fechas[row.fecha], fechaID = id, id
	}

	loc := domain.Location{
		Departamento: row.departamento,
		Distrito:     row.distrito,
		Localidad:    row.localidad,
		Orden:        DepartmentOrder(row.departamento),
	}
	locID, ok := c.locations[loc]
	if !ok {
		id, err := c.store.ResolveLocation(ctx, loc)
		if err != nil {
			return nil, eris.Wrap(err, "resolve ubicacion")
		}
		c.locations[loc], locID = id, id
	}

	eventID, ok := c.events[row.evento]
	if !ok {
		id, err := c.store.ResolveEvent(ctx, row.evento)
		if err != nil {
			return nil, eris.Wrap(err, "resolve evento")
		}
		c.events[row.evento], eventID = id, id
	}

	return &domain.Fact{
		FechaID:     fechaID,
		UbicacionID: locID,
		EventoID:    eventID,
		Quantities:  row.quantities,
	}, nil
}
