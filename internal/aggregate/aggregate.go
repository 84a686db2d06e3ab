// Package aggregate holds the storage-independent part of the query layer:
// filtering and grouping of fact rows, and the result shapes built from groups.
package aggregate

import (
	"slices"
	"strings"

	"github.com/ougirez/ayudas/internal/domain"
)

// Matches reports whether r passes every predicate of f. Soft-deleted rows never match.
func Matches(f domain.Filter, r domain.DetailRow) bool {
	if r.Eliminado {
		return false
	}
	if f.FechaDesde != nil && r.Fecha < f.FechaDesde.Format(domain.DateLayout) {
		return false
	}
	if f.FechaHasta != nil && r.Fecha > f.FechaHasta.Format(domain.DateLayout) {
		return false
	}
	if f.Departamento != "" && r.Departamento != f.Departamento {
		return false
	}
	if f.Distrito != "" && r.Distrito != f.Distrito {
		return false
	}
	if f.Localidad != "" && r.Localidad != f.Localidad {
		return false
	}
	if f.Evento != "" && r.Evento != f.Evento {
		return false
	}
	if f.Anio != 0 && r.Anio != f.Anio {
		return false
	}
	if f.Mes != 0 && r.Mes != f.Mes {
		return false
	}
	if f.Busqueda != "" {
		q := strings.ToUpper(f.Busqueda)
		hit := false
		for _, s := range []string{r.Departamento, r.Distrito, r.Localidad, r.Evento} {
			if strings.Contains(strings.ToUpper(s), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Filter returns the rows of in that pass f, keeping their order.
func Filter(f domain.Filter, in []domain.DetailRow) []domain.DetailRow {
	out := make([]domain.DetailRow, 0, len(in))
	for _, r := range in {
		if Matches(f, r) {
			out = append(out, r)
		}
	}
	return out
}

func keyOf(r domain.DetailRow) domain.GroupKey {
	return domain.GroupKey{
		Anio:         r.Anio,
		Mes:          r.Mes,
		Departamento: r.Departamento,
		Distrito:     r.Distrito,
		Localidad:    r.Localidad,
		Evento:       r.Evento,
	}
}

// Group sums detail rows per key of dims, one fact counting as one registro.
// With no dims the whole set collapses into a single group, or none when empty.
func Group(rows []domain.DetailRow, dims []domain.Dimension) []domain.GroupRow {
	groups := make([]domain.GroupRow, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, domain.GroupRow{GroupKey: keyOf(r), Quantities: r.Quantities, Registros: 1})
	}
	return Rollup(groups, dims)
}

// Rollup regroups already grouped rows onto a coarser set of dims.
func Rollup(rows []domain.GroupRow, dims []domain.Dimension) []domain.GroupRow {
	index := make(map[domain.GroupKey]int, len(rows))
	out := make([]domain.GroupRow, 0)
	for _, r := range rows {
		key := r.GroupKey.Project(dims)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.GroupRow{GroupKey: key})
		}
		out[i].Quantities = out[i].Quantities.Add(r.Quantities)
		out[i].Registros += r.Registros
	}
	Sort(out, dims)
	return out
}

// Sort orders groups ascending by dims.
func Sort(rows []domain.GroupRow, dims []domain.Dimension) {
	slices.SortStableFunc(rows, func(a, b domain.GroupRow) int {
		return a.GroupKey.Compare(b.GroupKey, dims)
	})
}
