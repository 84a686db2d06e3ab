package ayudas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ougirez/ayudas/internal/aggregate"
	"github.com/ougirez/ayudas/internal/cache"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/constants"
	"github.com/ougirez/ayudas/internal/pkg/metrics"
	"github.com/ougirez/ayudas/internal/pkg/store"
)

const EventoIncendio = "INCENDIO"

var (
	dimsAnual                 = []domain.Dimension{domain.DimAnio}
	dimsMensual               = []domain.Dimension{domain.DimAnio, domain.DimMes}
	dimsEvento                = []domain.Dimension{domain.DimEvento}
	dimsDepartamento          = []domain.Dimension{domain.DimDepartamento}
	dimsDepartamentoEvento    = []domain.Dimension{domain.DimDepartamento, domain.DimEvento}
	dimsAnioDepartamento      = []domain.Dimension{domain.DimAnio, domain.DimDepartamento}
	dimsAnioEvento            = []domain.Dimension{domain.DimAnio, domain.DimEvento}
	dimsLocalidadEventoCounts = []domain.Dimension{domain.DimDepartamento, domain.DimDistrito, domain.DimLocalidad, domain.DimEvento}
)

type Service struct {
	store store.Reader
	cache cache.Cache
}

func NewAyudasService(reader store.Reader, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: reader, cache: c}
}

type detailPage struct {
	Rows  []domain.DetailRow `json:"rows"`
	Count int64              `json:"count"`
}

// Detail returns one page of facts, newest first, and the number of matching facts.
func (s *Service) Detail(ctx context.Context, f domain.Filter, page domain.Page) ([]domain.DetailRow, int64, error) {
	key := "detallados?" + f.CacheKey() + "&" + page.String()
	res, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (detailPage, error) {
		start := time.Now()
		rows, count, err := s.store.ListFacts(ctx, f, page)
		metrics.RecordQuery("detallados", time.Since(start))
		if err != nil {
			return detailPage{}, fmt.Errorf("store.ListFacts: %w", err)
		}
		return detailPage{Rows: rows, Count: count}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	if res.Rows == nil {
		res.Rows = []domain.DetailRow{}
	}

	return res.Rows, res.Count, nil
}

func (s *Service) Yearly(ctx context.Context, f domain.Filter) ([]domain.TotalsRow, error) {
	rows, err := s.group(ctx, "anual", f, dimsAnual)
	if err != nil {
		return nil, err
	}
	return aggregate.Totals(rows, dimsAnual), nil
}

func (s *Service) Monthly(ctx context.Context, f domain.Filter) ([]domain.TotalsRow, error) {
	rows, err := s.group(ctx, "mensual", f, dimsMensual)
	if err != nil {
		return nil, err
	}
	return aggregate.Totals(rows, dimsMensual), nil
}

// ByLocation groups at the level below the most specific location filter.
func (s *Service) ByLocation(ctx context.Context, f domain.Filter) ([]domain.TotalsRow, error) {
	dims := domain.LocationDims(f.LocationLevel())
	rows, err := s.group(ctx, "ubicacion", f, dims)
	if err != nil {
		return nil, err
	}
	return aggregate.Totals(rows, dims), nil
}

func (s *Service) ByEvent(ctx context.Context, f domain.Filter) ([]domain.TotalsRow, error) {
	rows, err := s.group(ctx, "evento", f, dimsEvento)
	if err != nil {
		return nil, err
	}
	return aggregate.TotalsWithCount(rows, dimsEvento), nil
}

func (s *Service) EventByDepartment(ctx context.Context, f domain.Filter) ([]domain.TotalsRow, error) {
	rows, err := s.group(ctx, "evento_por_departamento", f, dimsDepartamentoEvento)
	if err != nil {
		return nil, err
	}
	return aggregate.Totals(rows, dimsDepartamentoEvento), nil
}

func (s *Service) StackedByDepartment(ctx context.Context, f domain.Filter) ([]domain.StackedRow, error) {
	rows, err := s.group(ctx, "departamento_apilado", f, dimsDepartamento)
	if err != nil {
		return nil, err
	}
	return aggregate.Stacked(rows, dimsDepartamento), nil
}

// EventCounts counts facts per event at the department or locality level.
func (s *Service) EventCounts(ctx context.Context, f domain.Filter, nivel string) ([]domain.CountRow, error) {
	var dims []domain.Dimension
	switch strings.ToLower(strings.TrimSpace(nivel)) {
	case "", string(domain.DimDepartamento):
		dims = dimsDepartamentoEvento
	case string(domain.DimLocalidad):
		dims = dimsLocalidadEventoCounts
	default:
		return nil, constants.ValidationError("nivel", "must be departamento or localidad")
	}

	rows, err := s.group(ctx, "eventos_conteo", f, dims)
	if err != nil {
		return nil, err
	}
	return aggregate.Counts(rows, dims), nil
}

func (s *Service) DepartmentTrend(ctx context.Context, f domain.Filter) ([]domain.SeriesRow, error) {
	rows, err := s.group(ctx, "tendencia_departamento", f, dimsAnioDepartamento)
	if err != nil {
		return nil, err
	}
	return aggregate.Series(rows, dimsAnioDepartamento, f.Producto), nil
}

func (s *Service) MonthlyTrend(ctx context.Context, f domain.Filter) ([]domain.SeriesRow, error) {
	rows, err := s.group(ctx, "tendencia_mensual", f, dimsMensual)
	if err != nil {
		return nil, err
	}
	return aggregate.Series(rows, dimsMensual, f.Producto), nil
}

func (s *Service) MonthlyDistribution(ctx context.Context, f domain.Filter) ([]domain.StackedRow, error) {
	rows, err := s.group(ctx, "distribucion_mensual", f, dimsMensual)
	if err != nil {
		return nil, err
	}
	return aggregate.Stacked(rows, dimsMensual), nil
}

// ProductEvolution is the yearly series of a single product, which must be set.
func (s *Service) ProductEvolution(ctx context.Context, f domain.Filter) ([]domain.SeriesRow, error) {
	if f.Producto == "" {
		return nil, constants.ValidationError("producto", "is required")
	}
	rows, err := s.group(ctx, "evolucion_producto", f, dimsAnual)
	if err != nil {
		return nil, err
	}
	return aggregate.Series(rows, dimsAnual, f.Producto), nil
}

func (s *Service) EventTotals(ctx context.Context, f domain.Filter) ([]domain.SeriesRow, error) {
	rows, err := s.group(ctx, "evento_totales", f, dimsEvento)
	if err != nil {
		return nil, err
	}
	return aggregate.Series(rows, dimsEvento, ""), nil
}

func (s *Service) EventComposition(ctx context.Context, f domain.Filter) ([]domain.StackedRow, error) {
	rows, err := s.group(ctx, "evento_composicion", f, dimsEvento)
	if err != nil {
		return nil, err
	}
	return aggregate.Stacked(rows, dimsEvento), nil
}

func (s *Service) EventsByYear(ctx context.Context, f domain.Filter) ([]domain.CountRow, error) {
	rows, err := s.group(ctx, "evento_anual", f, dimsAnioEvento)
	if err != nil {
		return nil, err
	}
	return aggregate.Counts(rows, dimsAnioEvento), nil
}

// FireStats restricts the filter to INCENDIO facts whatever event was asked for.
func (s *Service) FireStats(ctx context.Context, f domain.Filter) ([]domain.FireStatsRow, error) {
	f.Evento = EventoIncendio
	rows, err := s.group(ctx, "incendios_anual", f, dimsAnioDepartamento)
	if err != nil {
		return nil, err
	}
	return aggregate.FireStats(rows), nil
}

func (s *Service) Summary(ctx context.Context, f domain.Filter) (domain.Summary, error) {
	var byDepartment, byEvent []domain.GroupRow

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		byDepartment, err = s.group(egCtx, "resumen_departamento", f, dimsDepartamento)
		return err
	})
	eg.Go(func() (err error) {
		byEvent, err = s.group(egCtx, "resumen_evento", f, dimsEvento)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.Summary{}, err
	}

	return aggregate.Summarize(byDepartment, byEvent), nil
}

func (s *Service) DepartmentSummaries(ctx context.Context, f domain.Filter) ([]domain.DepartmentSummary, error) {
	var byDepartment, byDepartmentEvent []domain.GroupRow

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		byDepartment, err = s.group(egCtx, "resumen_departamento", f, dimsDepartamento)
		return err
	})
	eg.Go(func() (err error) {
		byDepartmentEvent, err = s.group(egCtx, "resumen_departamento_evento", f, dimsDepartamentoEvento)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return aggregate.DepartmentSummaries(byDepartment, byDepartmentEvent), nil
}

// group runs one cached aggregation. The cache key covers dims and filter, so
// endpoints grouping the same way share entries.
func (s *Service) group(ctx context.Context, operation string, f domain.Filter, dims []domain.Dimension) ([]domain.GroupRow, error) {
	key := "group?" + dimsKey(dims) + "&" + f.CacheKey()
	rows, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]domain.GroupRow, error) {
		start := time.Now()
		rows, err := s.store.Aggregate(ctx, f, dims)
		metrics.RecordQuery(operation, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("store.Aggregate %s: %w", operation, err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.GroupRow{}
	}

	return rows, nil
}

func dimsKey(dims []domain.Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, string(d))
	}
	return "dims=" + strings.Join(parts, ",")
}
