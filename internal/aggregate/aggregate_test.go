package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/ougirez/ayudas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(fecha, dep, dist, loc, ev string, q domain.Quantities) domain.DetailRow {
	t, err := time.Parse(domain.DateLayout, fecha)
	if err != nil {
		panic(err)
	}
	return domain.DetailRow{
		Fecha:        fecha,
		Anio:         t.Year(),
		Mes:          int(t.Month()),
		Departamento: dep,
		Distrito:     dist,
		Localidad:    loc,
		Evento:       ev,
		Quantities:   q,
	}
}

func fixture() []domain.DetailRow {
	deleted := row("2022-05-01", "A", "A1", "L1", "INCENDIO", domain.Quantities{KitSentencia: 1000})
	deleted.Eliminado = true
	return []domain.DetailRow{
		row("2022-03-10", "B", "B1", "L3", "SEQUIA", domain.Quantities{KitSentencia: 5}),
		row("2022-01-15", "A", "A1", "L1", "INCENDIO", domain.Quantities{KitSentencia: 10}),
		row("2023-07-02", "A", "A2", "L2", "INUNDACION", domain.Quantities{Colchones: 3, ChapaZinc: 2}),
		row("2021-12-31", "C", "C1", "L4", "SEQUIA", domain.Quantities{}),
		deleted,
	}
}

func TestGroupByYear_SumsAcrossDepartments(t *testing.T) {
	rows := []domain.DetailRow{
		row("2022-02-01", "A", "A1", "L1", "INCENDIO", domain.Quantities{KitSentencia: 10}),
		row("2022-06-01", "B", "B1", "L2", "INCENDIO", domain.Quantities{KitSentencia: 5}),
	}
	dims := []domain.Dimension{domain.DimAnio}

	got := Totals(Group(Filter(domain.Filter{Anio: 2022}, rows), dims), dims)
	require.Len(t, got, 1)
	assert.Equal(t, 2022, got[0].Anio)
	assert.Equal(t, int64(15), got[0].KitSentencia)
	assert.Equal(t, int64(15), got[0].Total)

	locDims := domain.LocationDims(domain.Filter{}.LocationLevel())
	byLoc := Totals(Group(rows, locDims), locDims)
	require.Len(t, byLoc, 2)
	assert.Equal(t, "A", byLoc[0].Departamento)
	assert.Equal(t, int64(10), byLoc[0].KitSentencia)
	assert.Equal(t, "B", byLoc[1].Departamento)
	assert.Equal(t, int64(5), byLoc[1].KitSentencia)
	assert.Empty(t, byLoc[0].Distrito)
}

func TestGroup_SumsMatchDetailForEveryFilter(t *testing.T) {
	filters := []domain.Filter{
		{},
		{Anio: 2022},
		{Departamento: "A"},
		{Evento: "SEQUIA"},
		{Busqueda: "l1"},
		{Mes: 7},
	}
	groupings := [][]domain.Dimension{
		{domain.DimAnio},
		{domain.DimAnio, domain.DimMes},
		{domain.DimDepartamento},
		{domain.DimEvento},
		{domain.DimDepartamento, domain.DimDistrito, domain.DimLocalidad},
	}

	for _, f := range filters {
		detail := Filter(f, fixture())
		var want domain.Quantities
		for _, r := range detail {
			want = want.Add(r.Quantities)
		}

		for _, dims := range groupings {
			var got domain.Quantities
			var registros int64
			for _, g := range Group(detail, dims) {
				got = got.Add(g.Quantities)
				registros += g.Registros
			}
			assert.Equal(t, want, got, "filter %+v dims %v", f, dims)
			assert.Equal(t, int64(len(detail)), registros)
		}
	}
}

func TestFilter_ExcludesSoftDeleted(t *testing.T) {
	for _, f := range []domain.Filter{{}, {Departamento: "A"}, {Anio: 2022, Mes: 5}, {Evento: "INCENDIO"}} {
		for _, r := range Filter(f, fixture()) {
			assert.False(t, r.Eliminado)
			assert.NotEqual(t, int64(1000), r.KitSentencia)
		}
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	from, _ := time.Parse(domain.DateLayout, "2022-01-15")
	to, _ := time.Parse(domain.DateLayout, "2022-03-10")

	got := Filter(domain.Filter{FechaDesde: &from, FechaHasta: &to}, fixture())
	require.Len(t, got, 2)
	assert.Equal(t, "2022-03-10", got[0].Fecha)
	assert.Equal(t, "2022-01-15", got[1].Fecha)
}

func TestGroup_EmptyIsEmptySlice(t *testing.T) {
	dims := []domain.Dimension{domain.DimAnio}
	got := Totals(Group(Filter(domain.Filter{Departamento: "X"}, fixture()), dims), dims)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroup_KeepsZeroGroupsAndSorts(t *testing.T) {
	dims := []domain.Dimension{domain.DimAnio, domain.DimMes}
	got := Group(Filter(domain.Filter{}, fixture()), dims)
	require.Len(t, got, 4)

	assert.Equal(t, 2021, got[0].Anio)
	assert.Equal(t, 12, got[0].Mes)
	assert.True(t, got[0].Quantities.IsZero(), "zero group must be kept")
	assert.Equal(t, "Diciembre", got[0].NombreMes)

	for i := 1; i < len(got); i++ {
		assert.Negative(t, got[i-1].GroupKey.Compare(got[i].GroupKey, dims))
	}
}

func TestStacked_ZeroFillsEveryAidType(t *testing.T) {
	dims := []domain.Dimension{domain.DimDepartamento}
	got := Stacked(Group(Filter(domain.Filter{}, fixture()), dims), dims)
	require.Len(t, got, 3)

	for _, g := range got {
		assert.Len(t, g.Cantidades, len(domain.AidTypes))
		for _, at := range domain.AidTypes {
			_, ok := g.Cantidades[string(at)]
			assert.True(t, ok, "%s missing in %s", at, g.Departamento)
		}
	}
	assert.Equal(t, int64(3), got[0].Cantidades[string(domain.Colchones)])
	assert.Equal(t, int64(0), got[1].Cantidades[string(domain.Colchones)])
	assert.Equal(t, int64(15), got[0].Total)
}

func TestSeriesAndCounts(t *testing.T) {
	dims := []domain.Dimension{domain.DimAnio}
	groups := Group(Filter(domain.Filter{}, fixture()), dims)

	series := Series(groups, dims, domain.KitSentencia)
	require.Len(t, series, 3)
	assert.Equal(t, int64(15), series[1].UnidadesDistribuidas)
	assert.Equal(t, "kit_sentencia", series[1].Producto)

	total := Series(groups, dims, "")
	assert.Equal(t, int64(5), total[2].UnidadesDistribuidas)

	evDims := []domain.Dimension{domain.DimAnio, domain.DimEvento}
	counts := Counts(Group(Filter(domain.Filter{}, fixture()), evDims), evDims)
	require.Len(t, counts, 4)
	assert.Equal(t, "SEQUIA", counts[0].Evento)
	assert.Equal(t, "INCENDIO", counts[1].Evento)
	assert.Equal(t, int64(1), counts[1].NumeroEventos)
}

func TestSummaries(t *testing.T) {
	detail := Filter(domain.Filter{}, fixture())
	detail = append(detail, row("2023-09-09", "A", "A1", "L1", "INUNDACION", domain.Quantities{KitEvento: 4}))

	byDep := Group(detail, []domain.Dimension{domain.DimDepartamento})
	byEvent := Group(detail, []domain.Dimension{domain.DimEvento})
	s := Summarize(byDep, byEvent)
	assert.Equal(t, int64(5), s.CantidadRegistrosTotal)
	assert.Equal(t, int64(4), s.CantidadKitEvento)
	assert.Equal(t, int64(3), s.CantidadDepartamentos)
	assert.Equal(t, int64(3), s.CantidadEventos)
	assert.Equal(t, int64(24), s.UnidadesDistribuidas)

	byDepEvent := Group(detail, []domain.Dimension{domain.DimDepartamento, domain.DimEvento})
	deps := DepartmentSummaries(byDep, byDepEvent)
	require.Len(t, deps, 3)
	assert.Equal(t, "A", deps[0].Departamento)
	assert.Equal(t, "INUNDACION", deps[0].EventoMasFrecuente)
	assert.Equal(t, int64(3), deps[0].CantidadRegistros)
	assert.Equal(t, "SEQUIA", deps[1].EventoMasFrecuente)
}

func TestFireStats(t *testing.T) {
	dims := []domain.Dimension{domain.DimAnio, domain.DimDepartamento}
	groups := Group(Filter(domain.Filter{Evento: "INUNDACION"}, fixture()), dims)
	got := FireStats(groups)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Chapas)
	assert.Equal(t, int64(5), got[0].UnidadesDistribuidas)
	assert.Equal(t, int64(1), got[0].NumeroEventos)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, domain.Page{Number: 2, Size: 2}))
	assert.Equal(t, []int{5}, Slice(items, domain.Page{Number: 3, Size: 2}))
	got := Slice(items, domain.Page{Number: 9, Size: 2})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Slice(items, domain.Page{Number: math.MaxInt, Size: 100}))
	assert.Empty(t, Slice(items, domain.NewPage(100000000000000000, 100)))
}
