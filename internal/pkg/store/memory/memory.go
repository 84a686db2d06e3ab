// Package memory is an in-process store backend. It keeps the star schema in maps and
// answers reads with the aggregate package, so it behaves like the Postgres store
// without a database.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/ougirez/ayudas/internal/aggregate"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/store"
)

type locationKey struct {
	departamento, distrito, localidad string
}

type Store struct {
	mu sync.RWMutex

	fechas       map[string]domain.Fecha
	fechasByID   map[int64]domain.Fecha
	locations    map[locationKey]domain.Location
	locationByID map[int64]domain.Location
	events       map[string]domain.Event
	eventByID    map[int64]domain.Event

	facts        []domain.Fact
	fingerprints map[string]struct{}
	runs         []domain.Run

	nextID int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		fechas:       make(map[string]domain.Fecha),
		fechasByID:   make(map[int64]domain.Fecha),
		locations:    make(map[locationKey]domain.Location),
		locationByID: make(map[int64]domain.Location),
		events:       make(map[string]domain.Event),
		eventByID:    make(map[int64]domain.Event),
		fingerprints: make(map[string]struct{}),
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) ResolveFecha(_ context.Context, fecha domain.Fecha) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fecha.Fecha.Format(domain.DateLayout)
	if existing, ok := s.fechas[key]; ok {
		return existing.ID, nil
	}
	fecha.ID = s.id()
	s.fechas[key] = fecha
	s.fechasByID[fecha.ID] = fecha

	return fecha.ID, nil
}

func (s *Store) ResolveLocation(_ context.Context, loc domain.Location) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := locationKey{loc.Departamento, loc.Distrito, loc.Localidad}
	if existing, ok := s.locations[key]; ok {
		return existing.ID, nil
	}
	loc.ID = s.id()
	s.locations[key] = loc
	s.locationByID[loc.ID] = loc

	return loc.ID, nil
}

func (s *Store) ResolveEvent(_ context.Context, evento string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.events[evento]; ok {
		return existing.ID, nil
	}
	ev := domain.Event{ID: s.id(), Evento: evento}
	s.events[evento] = ev
	s.eventByID[ev.ID] = ev

	return ev.ID, nil
}

func (s *Store) InsertFact(_ context.Context, fact *domain.Fact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fingerprints[fact.Fingerprint]; ok {
		return false, nil
	}
	fact.ID = s.id()
	s.fingerprints[fact.Fingerprint] = struct{}{}
	s.facts = append(s.facts, *fact)

	return true, nil
}

func (s *Store) InsertRun(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, *run)
	return nil
}

// Runs returns the recorded ETL runs, oldest first.
func (s *Store) Runs() []domain.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.runs)
}

// Counts returns the number of stored facts, dates, locations and events.
func (s *Store) Counts() (facts, fechas, locations, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.facts), len(s.fechas), len(s.locations), len(s.events)
}

func (s *Store) ListFacts(_ context.Context, filter domain.Filter, page domain.Page) ([]domain.DetailRow, int64, error) {
	rows := aggregate.Filter(filter, s.detail())
	slices.SortStableFunc(rows, func(a, b domain.DetailRow) int {
		if c := cmp.Compare(b.Fecha, a.Fecha); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	return aggregate.Slice(rows, page), int64(len(rows)), nil
}

func (s *Store) Aggregate(_ context.Context, filter domain.Filter, dims []domain.Dimension) ([]domain.GroupRow, error) {
	return aggregate.Group(aggregate.Filter(filter, s.detail()), dims), nil
}

func (s *Store) detail() []domain.DetailRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.DetailRow, 0, len(s.facts))
	for _, f := range s.facts {
		fecha := s.fechasByID[f.FechaID]
		loc := s.locationByID[f.UbicacionID]
		rows = append(rows, domain.DetailRow{
			ID:           f.ID,
			Fecha:        fecha.Fecha.Format(domain.DateLayout),
			Anio:         fecha.Anio,
			Mes:          fecha.Mes,
			Departamento: loc.Departamento,
			Distrito:     loc.Distrito,
			Localidad:    loc.Localidad,
			Evento:       s.eventByID[f.EventoID].Evento,
			Eliminado:    f.Eliminado,
			Quantities:   f.Quantities,
		})
	}

	return rows
}
