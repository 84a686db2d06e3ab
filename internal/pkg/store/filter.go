package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/ayudas/internal/domain"
)

// applyFilter adds the filter predicates to a query over factsFromClause.
// Soft-deleted facts are always excluded.
func applyFilter(query sq.SelectBuilder, f domain.Filter) sq.SelectBuilder {
	query = query.Where(sq.Eq{"f.eliminado": false})

	if f.FechaDesde != nil {
		query = query.Where(sq.GtOrEq{"d.fecha": *f.FechaDesde})
	}
	if f.FechaHasta != nil {
		query = query.Where(sq.LtOrEq{"d.fecha": *f.FechaHasta})
	}
	if f.Departamento != "" {
		query = query.Where(sq.Eq{"u.departamento": f.Departamento})
	}
	if f.Distrito != "" {
		query = query.Where(sq.Eq{"u.distrito": f.Distrito})
	}
	if f.Localidad != "" {
		query = query.Where(sq.Eq{"u.localidad": f.Localidad})
	}
	if f.Evento != "" {
		query = query.Where(sq.Eq{"e.evento": f.Evento})
	}
	if f.Anio != 0 {
		query = query.Where(sq.Eq{"d.anio": f.Anio})
	}
	if f.Mes != 0 {
		query = query.Where(sq.Eq{"d.mes": f.Mes})
	}
	if f.Busqueda != "" {
		pattern := containsPattern(f.Busqueda)
		query = query.Where(sq.Or{
			sq.ILike{"u.departamento": pattern},
			sq.ILike{"u.distrito": pattern},
			sq.ILike{"u.localidad": pattern},
			sq.ILike{"e.evento": pattern},
		})
	}

	return query
}
