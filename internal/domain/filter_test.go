package domain

import (
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/ougirez/ayudas/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr string
	}{
		{name: "empty", filter: Filter{}},
		{name: "full", filter: Filter{Anio: 2023, Mes: 12, FechaDesde: date("2023-01-01"), FechaHasta: date("2023-12-31"), Producto: KitSentencia}},
		{name: "month too big", filter: Filter{Mes: 13}, wantErr: "mes"},
		{name: "negative month", filter: Filter{Mes: -1}, wantErr: "mes"},
		{name: "negative year", filter: Filter{Anio: -5}, wantErr: "anio"},
		{name: "reversed range", filter: Filter{FechaDesde: date("2024-01-01"), FechaHasta: date("2023-01-01")}, wantErr: "fecha_desde"},
		{name: "unknown product", filter: Filter{Producto: "bicicletas"}, wantErr: "producto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ce *constants.CodedError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, http.StatusBadRequest, ce.Code())
		})
	}
}

func TestFilterCacheKey_Stable(t *testing.T) {
	a := Filter{Departamento: "CENTRAL", Anio: 2022, Busqueda: "ita"}
	b := Filter{Anio: 2022, Busqueda: "ITA", Departamento: "CENTRAL"}
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "departamento=CENTRAL&anio=2022&q=ITA", a.CacheKey())
	assert.Empty(t, Filter{}.CacheKey())
}

func TestFilterLocationLevel(t *testing.T) {
	assert.Equal(t, DimDepartamento, Filter{}.LocationLevel())
	assert.Equal(t, DimDistrito, Filter{Departamento: "CENTRAL"}.LocationLevel())
	assert.Equal(t, DimLocalidad, Filter{Distrito: "LUQUE"}.LocationLevel())
	assert.Equal(t, DimLocalidad, Filter{Localidad: "YTORORO"}.LocationLevel())
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: 10}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Size: 100}, NewPage(3, 500))
	assert.Equal(t, 40, NewPage(3, 20).Offset())

	huge := NewPage(100000000000000000, 100)
	assert.Equal(t, constants.MaxPage, huge.Number)
	assert.Positive(t, huge.Offset())
	assert.Equal(t, math.MaxInt, Page{Number: math.MaxInt, Size: 100}.Offset())
}
