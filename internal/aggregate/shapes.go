package aggregate

import (
	"slices"

	"github.com/ougirez/ayudas/internal/domain"
)

// Totals sums every aid column per group and adds the grand total.
func Totals(rows []domain.GroupRow, dims []domain.Dimension) []domain.TotalsRow {
	out := make([]domain.TotalsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.TotalsRow{
			GroupKey:   r.GroupKey.Project(dims),
			Quantities: r.Quantities,
			Total:      r.Quantities.Total(),
		})
	}
	return out
}

// TotalsWithCount is Totals plus the number of facts of each group.
func TotalsWithCount(rows []domain.GroupRow, dims []domain.Dimension) []domain.TotalsRow {
	out := Totals(rows, dims)
	for i := range out {
		out[i].NumeroOcurrencias = rows[i].Registros
	}
	return out
}

// Counts keeps only the number of facts per group.
func Counts(rows []domain.GroupRow, dims []domain.Dimension) []domain.CountRow {
	out := make([]domain.CountRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CountRow{
			GroupKey:      r.GroupKey.Project(dims),
			NumeroEventos: r.Registros,
		})
	}
	return out
}

// Stacked maps every known aid type to its sum per group, zero-filled.
func Stacked(rows []domain.GroupRow, dims []domain.Dimension) []domain.StackedRow {
	out := make([]domain.StackedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StackedRow{
			GroupKey:   r.GroupKey.Project(dims),
			Cantidades: r.Quantities.Map(),
			Total:      r.Quantities.Total(),
		})
	}
	return out
}

// Series reduces each group to the units of product, or the total when product is empty.
func Series(rows []domain.GroupRow, dims []domain.Dimension, product domain.AidType) []domain.SeriesRow {
	out := make([]domain.SeriesRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SeriesRow{
			GroupKey:             r.GroupKey.Project(dims),
			Producto:             string(product),
			UnidadesDistribuidas: r.Quantities.Units(product),
		})
	}
	return out
}

// FireStats shapes (anio, departamento) groups of INCENDIO facts.
func FireStats(rows []domain.GroupRow) []domain.FireStatsRow {
	dims := []domain.Dimension{domain.DimAnio, domain.DimDepartamento}
	out := make([]domain.FireStatsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FireStatsRow{
			GroupKey:             r.GroupKey.Project(dims),
			NumeroEventos:        r.Registros,
			Chapas:               r.Quantities.Chapas(),
			UnidadesDistribuidas: r.Quantities.Total(),
			Quantities:           r.Quantities,
		})
	}
	return out
}

// Summarize builds the general summary from department and event groupings
// of the same filtered set.
func Summarize(byDepartment, byEvent []domain.GroupRow) domain.Summary {
	var s domain.Summary
	for _, r := range byDepartment {
		s.CantidadRegistrosTotal += r.Registros
		s.CantidadKitEvento += r.KitEvento
		s.UnidadesDistribuidas += r.Quantities.Total()
	}
	s.CantidadDepartamentos = int64(len(byDepartment))
	s.CantidadEventos = int64(len(byEvent))
	return s
}

// DepartmentSummaries joins per-department totals with the most frequent event of each
// department. byDepartmentEvent must be grouped by (departamento, evento). Ties go to the
// alphabetically first event.
func DepartmentSummaries(byDepartment, byDepartmentEvent []domain.GroupRow) []domain.DepartmentSummary {
	type best struct {
		evento string
		count  int64
	}
	top := make(map[string]best, len(byDepartment))
	for _, r := range byDepartmentEvent {
		cur, ok := top[r.Departamento]
		if !ok || r.Registros > cur.count || (r.Registros == cur.count && r.Evento < cur.evento) {
			top[r.Departamento] = best{evento: r.Evento, count: r.Registros}
		}
	}

	out := make([]domain.DepartmentSummary, 0, len(byDepartment))
	for _, r := range byDepartment {
		out = append(out, domain.DepartmentSummary{
			Departamento:       r.Departamento,
			Quantities:         r.Quantities,
			CantidadRegistros:  r.Registros,
			EventoMasFrecuente: top[r.Departamento].evento,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.DepartmentSummary) int {
		switch {
		case a.Departamento < b.Departamento:
			return -1
		case a.Departamento > b.Departamento:
			return 1
		}
		return 0
	})
	return out
}

// Slice returns the page of items, empty (never nil) past the end.
func Slice[T any](items []T, page domain.Page) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) || end < start {
		end = len(items)
	}
	return items[start:end]
}
