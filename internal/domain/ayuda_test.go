package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuantities(t *testing.T) {
	q := Quantities{KitSentencia: 10, ChapaZinc: 4, ChapaFibrocemento: 6}
	assert.Equal(t, int64(20), q.Total())
	assert.Equal(t, int64(10), q.Chapas())
	assert.Equal(t, int64(4), q.Units(ChapaZinc))
	assert.Equal(t, int64(20), q.Units(""))

	sum := q.Add(Quantities{KitSentencia: 5, Frazadas: 2})
	assert.Equal(t, int64(15), sum.KitSentencia)
	assert.Equal(t, int64(2), sum.Frazadas)
	assert.Equal(t, int64(10), q.KitSentencia, "Add must not mutate the receiver")

	m := Quantities{}.Map()
	assert.Len(t, m, len(AidTypes))
	for _, at := range AidTypes {
		v, ok := m[string(at)]
		assert.True(t, ok, at)
		assert.Zero(t, v)
	}
	assert.True(t, Quantities{}.IsZero())
}

func TestNewFecha(t *testing.T) {
	f := NewFecha(time.Date(2023, time.March, 9, 17, 30, 0, 0, time.Local))
	assert.Equal(t, 2023, f.Anio)
	assert.Equal(t, 3, f.Mes)
	assert.Equal(t, "Marzo", f.NombreMes)
	assert.Equal(t, 9, f.DiaDelMes)
	assert.Equal(t, "2023-03-09", f.Fecha.Format(DateLayout))
	assert.Empty(t, MonthName(13))
}

func TestParseAidType(t *testing.T) {
	at, ok := ParseAidType("colchones_cantidad")
	assert.True(t, ok)
	assert.Equal(t, Colchones, at)

	_, ok = ParseAidType("colchones")
	assert.False(t, ok)
}
