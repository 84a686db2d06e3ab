package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ougirez/ayudas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, day time.Time, dep, ev, fp string, q domain.Quantities, deleted bool) {
	t.Helper()
	ctx := context.Background()

	fechaID, err := s.ResolveFecha(ctx, domain.NewFecha(day))
	require.NoError(t, err)
	locID, err := s.ResolveLocation(ctx, domain.Location{Departamento: dep, Distrito: "D", Localidad: "L"})
	require.NoError(t, err)
	evID, err := s.ResolveEvent(ctx, ev)
	require.NoError(t, err)

	_, err = s.InsertFact(ctx, &domain.Fact{
		FechaID: fechaID, UbicacionID: locID, EventoID: evID,
		Fingerprint: fp, Eliminado: deleted, Quantities: q,
	})
	require.NoError(t, err)
}

func TestStore_ResolveIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.ResolveEvent(ctx, "SEQUIA")
	require.NoError(t, err)
	b, err := s.ResolveEvent(ctx, "SEQUIA")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	day := time.Date(2022, 1, 1, 15, 0, 0, 0, time.UTC)
	f1, _ := s.ResolveFecha(ctx, domain.NewFecha(day))
	f2, _ := s.ResolveFecha(ctx, domain.NewFecha(day.Add(time.Hour)))
	assert.Equal(t, f1, f2)

	_, fechas, _, events := s.Counts()
	assert.Equal(t, 1, fechas)
	assert.Equal(t, 1, events)
}

func TestStore_InsertFactDedup(t *testing.T) {
	s := New()
	day := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, s, day, "CENTRAL", "SEQUIA", "fp1", domain.Quantities{KitSentencia: 1}, false)

	inserted, err := s.InsertFact(context.Background(), &domain.Fact{Fingerprint: "fp1"})
	require.NoError(t, err)
	assert.False(t, inserted)

	facts, _, _, _ := s.Counts()
	assert.Equal(t, 1, facts)
}

func TestStore_ListFactsOrderAndPaging(t *testing.T) {
	s := New()
	seed(t, s, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), "CENTRAL", "SEQUIA", "a", domain.Quantities{KitSentencia: 1}, false)
	seed(t, s, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "CENTRAL", "SEQUIA", "b", domain.Quantities{KitSentencia: 2}, false)
	seed(t, s, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "GUAIRA", "INCENDIO", "c", domain.Quantities{KitSentencia: 3}, false)
	seed(t, s, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "GUAIRA", "INCENDIO", "d", domain.Quantities{KitSentencia: 4}, true)

	rows, count, err := s.ListFacts(context.Background(), domain.Filter{}, domain.NewPage(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, rows, 2)
	assert.Equal(t, "GUAIRA", rows[0].Departamento)
	assert.Equal(t, "2023-01-01", rows[1].Fecha)
	assert.Equal(t, "CENTRAL", rows[1].Departamento)

	rows, count, err = s.ListFacts(context.Background(), domain.Filter{}, domain.NewPage(5, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Empty(t, rows)
}

func TestStore_Aggregate(t *testing.T) {
	s := New()
	seed(t, s, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), "CENTRAL", "SEQUIA", "a", domain.Quantities{KitSentencia: 1}, false)
	seed(t, s, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), "CENTRAL", "SEQUIA", "b", domain.Quantities{KitSentencia: 2}, false)
	seed(t, s, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), "CENTRAL", "SEQUIA", "c", domain.Quantities{KitSentencia: 100}, true)

	rows, err := s.Aggregate(context.Background(), domain.Filter{}, []domain.Dimension{domain.DimAnio})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].KitSentencia)
	assert.Equal(t, int64(2), rows[0].Registros)
}
