package controller

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/ayudas/internal/domain"
)

func TestPaginated_Boundaries(t *testing.T) {
	base, err := url.Parse("http://localhost:8080/api/v1/asistencias/anual/?anio=2022&page=2")
	require.NoError(t, err)

	first := paginated(base, 25, domain.NewPage(1, 10), []int{1})
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://localhost:8080/api/v1/asistencias/anual/?anio=2022&page=2", *first.Next)

	last := paginated(base, 25, domain.NewPage(3, 10), []int{1})
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Previous)
	assert.Equal(t, "http://localhost:8080/api/v1/asistencias/anual/?anio=2022&page=2", *last.Previous)

	second := paginated(base, 25, domain.NewPage(2, 10), []int{1})
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://localhost:8080/api/v1/asistencias/anual/?anio=2022", *second.Previous)

	exact := paginated(base, 20, domain.NewPage(2, 10), []int{1})
	assert.Nil(t, exact.Next)
}

func TestPaginated_NilResultsBecomeEmpty(t *testing.T) {
	base, _ := url.Parse("http://localhost/x/")
	out := paginated[int](base, 0, domain.NewPage(1, 10), nil)
	assert.NotNil(t, out.Results)
	assert.Nil(t, out.Next)
	assert.Nil(t, out.Previous)
}

func TestPaginatedSlice(t *testing.T) {
	base, _ := url.Parse("http://localhost/x/")
	out := paginatedSlice(base, []string{"a", "b", "c"}, domain.NewPage(2, 2))
	assert.Equal(t, int64(3), out.Count)
	assert.Equal(t, []string{"c"}, out.Results)

	far := paginatedSlice(base, []string{"a", "b", "c"}, domain.NewPage(100000000000000000, 100))
	assert.Equal(t, int64(3), far.Count)
	assert.NotNil(t, far.Results)
	assert.Empty(t, far.Results)
	assert.Nil(t, far.Next)
	assert.NotNil(t, far.Previous)
}

func TestFilterQuery_Filter(t *testing.T) {
	q := FilterQuery{
		FechaDesde:   "2022-01-01",
		FechaHasta:   "2022-12-31",
		Departamento: "  alto   paraná ",
		Evento:       "incendio",
		Producto:     "kit_evento",
		Busqueda:     "  luque ",
	}
	f, err := q.Filter()
	require.NoError(t, err)
	assert.Equal(t, "ALTO PARANÁ", f.Departamento)
	assert.Equal(t, "INCENDIO", f.Evento)
	assert.Equal(t, domain.KitEvento, f.Producto)
	assert.Equal(t, "luque", f.Busqueda)
	require.NotNil(t, f.FechaDesde)
	assert.Equal(t, 2022, f.FechaDesde.Year())

	_, err = FilterQuery{FechaDesde: "2023-01-01", FechaHasta: "2022-01-01"}.Filter()
	require.Error(t, err)
}
