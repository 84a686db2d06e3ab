package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ougirez/ayudas/internal/aggregate"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/logger"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
)

var detailColumns = append([]string{
	"f.id_asistencia_hum AS id",
	"to_char(d.fecha, 'YYYY-MM-DD') AS fecha",
	"d.anio",
	"d.mes",
	"u.departamento",
	"u.distrito",
	"u.localidad",
	"e.evento",
	"f.eliminado",
}, quantityColumns("f.")...)

func (s *store) ListFacts(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.DetailRow, int64, error) {
	countQuery := applyFilter(builder().Select("COUNT(*)").From(factsFromClause), filter)

	var count int64
	if err := s.pool.QueryRowx(ctx, countQuery).Scan(&count); err != nil {
		logger.Errorf(ctx, "count facts: %s", err.Error())
		return nil, 0, fmt.Errorf("count facts: %w", err)
	}
	if count == 0 || page.Offset() >= int(count) {
		return []domain.DetailRow{}, count, nil
	}

	query := applyFilter(builder().Select(detailColumns...).From(factsFromClause), filter).
		OrderBy("d.fecha DESC", "f.id_asistencia_hum DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))

	rows, err := xpgx.Selectx[domain.DetailRow](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "select facts: %s", err.Error())
		return nil, 0, fmt.Errorf("select facts: %w", err)
	}

	return rows, count, nil
}

func (s *store) Aggregate(ctx context.Context, filter domain.Filter, dims []domain.Dimension) ([]domain.GroupRow, error) {
	columns := make([]string, 0, len(dims)+len(domain.AidTypes)+1)
	groupBy := make([]string, 0, len(dims))
	orderBy := make([]string, 0, len(dims))
	for _, d := range dims {
		col, ok := dimensionColumns[d]
		if !ok {
			return nil, fmt.Errorf("unknown dimension %q", d)
		}
		columns = append(columns, col)
		groupBy = append(groupBy, col)
		if d == domain.DimAnio || d == domain.DimMes {
			orderBy = append(orderBy, col)
		} else {
			orderBy = append(orderBy, col+` COLLATE "C"`)
		}
	}
	for _, t := range domain.AidTypes {
		columns = append(columns, fmt.Sprintf("COALESCE(SUM(f.%[1]s), 0)::bigint AS %[1]s", t))
	}
	columns = append(columns, "COUNT(*) AS registros")

	query := applyFilter(builder().Select(columns...).From(factsFromClause), filter)
	if len(groupBy) > 0 {
		query = query.GroupBy(groupBy...).OrderBy(orderBy...)
	} else {
		// without dims the aggregate row exists even for an empty set
		query = query.Having("COUNT(*) > 0")
	}

	rows, err := xpgx.Selectx[domain.GroupRow](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "aggregate by %s: %s", dimsString(dims), err.Error())
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	for i := range rows {
		rows[i].GroupKey = rows[i].GroupKey.Project(dims)
	}
	aggregate.Sort(rows, dims)

	return rows, nil
}

func (s *store) InsertFact(ctx context.Context, fact *domain.Fact) (bool, error) {
	values := []any{fact.FechaID, fact.UbicacionID, fact.EventoID, fact.Fingerprint, fact.Eliminado}
	for _, t := range domain.AidTypes {
		values = append(values, fact.Quantities.Get(t))
	}

	query := builder().Insert(tableHechos).
		Columns(append([]string{"id_fecha", "id_ubicacion", "id_evento", "fingerprint", "eliminado"}, quantityColumns("")...)...).
		Values(values...).
		Suffix("ON CONFLICT (fingerprint) DO NOTHING")

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return false, fmt.Errorf("insert fact: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *store) InsertRun(ctx context.Context, run *domain.Run) error {
	query := builder().Insert(tableRuns).
		Columns("id", "source", "total", "inserted", "duplicates", "skipped", "started_at", "finished_at").
		Values(run.ID, run.Source, run.Total, run.Inserted, run.Duplicates, run.Skipped, run.StartedAt, run.FinishedAt)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

func dimsString(dims []domain.Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, string(d))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}
