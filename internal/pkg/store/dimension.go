package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/logger"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
)

func (s *store) ResolveFecha(ctx context.Context, fecha domain.Fecha) (int64, error) {
	insert := builder().Insert(tableFechas).
		Columns("fecha", "anio", "mes", "nombre_mes", "dia_del_mes").
		Values(fecha.Fecha, fecha.Anio, fecha.Mes, fecha.NombreMes, fecha.DiaDelMes).
		Suffix("ON CONFLICT (fecha) DO NOTHING RETURNING id_fecha")

	selectQuery := builder().Select("id_fecha AS id").
		From(tableFechas).
		Where(sq.Eq{"fecha": fecha.Fecha})

	id, err := s.resolve(ctx, insert, selectQuery)
	if err != nil {
		return 0, fmt.Errorf("resolve fecha %s: %w", fecha.Fecha.Format(domain.DateLayout), err)
	}

	return id, nil
}

func (s *store) ResolveLocation(ctx context.Context, loc domain.Location) (int64, error) {
	insert := builder().Insert(tableUbicacion).
		Columns("departamento", "distrito", "localidad", "orden").
		Values(loc.Departamento, loc.Distrito, loc.Localidad, loc.Orden).
		Suffix("ON CONFLICT (departamento, distrito, localidad) DO NOTHING RETURNING id_ubicacion")

	selectQuery := builder().Select("id_ubicacion AS id").
		From(tableUbicacion).
		Where(sq.Eq{
			"departamento": loc.Departamento,
			"distrito":     loc.Distrito,
			"localidad":    loc.Localidad,
		})

	id, err := s.resolve(ctx, insert, selectQuery)
	if err != nil {
		return 0, fmt.Errorf("resolve ubicacion %s/%s/%s: %w", loc.Departamento, loc.Distrito, loc.Localidad, err)
	}

	return id, nil
}

func (s *store) ResolveEvent(ctx context.Context, evento string) (int64, error) {
	insert := builder().Insert(tableEventos).
		Columns("evento").
		Values(evento).
		Suffix("ON CONFLICT (evento) DO NOTHING RETURNING id_evento")

	selectQuery := builder().Select("id_evento AS id").
		From(tableEventos).
		Where(sq.Eq{"evento": evento})

	id, err := s.resolve(ctx, insert, selectQuery)
	if err != nil {
		return 0, fmt.Errorf("resolve evento %s: %w", evento, err)
	}

	return id, nil
}

type dimensionRow struct {
	ID int64 `db:"id"`
}

// resolve inserts a dimension row and returns its id. On conflict the existing row
// is selected instead, retrying while a concurrent insert is not yet visible.
func (s *store) resolve(ctx context.Context, insert sq.InsertBuilder, selectQuery sq.SelectBuilder) (int64, error) {
	var id int64
	err := s.pool.QueryRowx(ctx, insert).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("insert: %w", err)
	}

	op := func() error {
		row, err := xpgx.Getx[dimensionRow](ctx, s.pool, selectQuery)
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Debugf(ctx, "dimension row not visible yet, retrying")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		id = row.ID
		return nil
	}

	if err = backoff.Retry(op, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return 0, wrapErr(err)
	}

	return id, nil
}
