package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/ayudas/internal/cache"
	"github.com/ougirez/ayudas/internal/config"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/constants"
	"github.com/ougirez/ayudas/internal/pkg/store/memory"
)

func seed(t *testing.T, s *memory.Store, fecha, dep, ev string, q domain.Quantities) {
	t.Helper()
	ctx := context.Background()

	day, err := time.Parse(domain.DateLayout, fecha)
	require.NoError(t, err)
	fechaID, err := s.ResolveFecha(ctx, domain.NewFecha(day))
	require.NoError(t, err)
	locID, err := s.ResolveLocation(ctx, domain.Location{Departamento: dep, Distrito: constants.Unspecified, Localidad: constants.Unspecified})
	require.NoError(t, err)
	evID, err := s.ResolveEvent(ctx, ev)
	require.NoError(t, err)
	_, err = s.InsertFact(ctx, &domain.Fact{
		FechaID: fechaID, UbicacionID: locID, EventoID: evID,
		Fingerprint: fecha + dep + ev, Quantities: q,
	})
	require.NoError(t, err)
}

func newTestAPI(t *testing.T, st *memory.Store) *APIService {
	t.Helper()
	svc, err := NewAPIService(config.ServerConfig{CORSOrigins: []string{"*"}}, st, cache.Noop{})
	require.NoError(t, err)
	return svc
}

func get(t *testing.T, svc *APIService, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAPI_EmptyDataset(t *testing.T) {
	svc := newTestAPI(t, memory.New())

	rec := get(t, svc, "/api/v1/asistencias/anual/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rec.Body.String())

	rec = get(t, svc, "/api/v1/asistencias/detallados/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rec.Body.String())

	rec = get(t, svc, "/api/v1/asistencias/departamento/apilado/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPI_ValidationErrors(t *testing.T) {
	svc := newTestAPI(t, memory.New())

	tests := []struct {
		name   string
		target string
	}{
		{"non numeric year", "/api/v1/asistencias/anual/?anio=abc"},
		{"negative year", "/api/v1/asistencias/anual/?anio=-1"},
		{"month out of range", "/api/v1/asistencias/mensual/?mes=13"},
		{"bad date", "/api/v1/asistencias/detallados/?fecha_desde=01-02-2022"},
		{"reversed range", "/api/v1/asistencias/detallados/?fecha_desde=2023-01-01&fecha_hasta=2022-01-01"},
		{"unknown product", "/api/v1/asistencias/tendencia/mensual/?producto=agua"},
		{"missing product", "/api/v1/asistencias/evolucion/producto/"},
		{"bad level", "/api/v1/asistencias/eventos/conteo/?nivel=pais"},
		{"bad page", "/api/v1/asistencias/anual/?page=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, svc, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestAPI_BindErrorKeepsDetail(t *testing.T) {
	svc := newTestAPI(t, memory.New())

	rec := get(t, svc, "/api/v1/asistencias/anual/?anio=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Message, constants.ErrBadRequest.Error()+": "), resp.Message)
	assert.Contains(t, resp.Message, `"abc"`)
}

func TestAPI_UnknownRoute(t *testing.T) {
	svc := newTestAPI(t, memory.New())

	rec := get(t, svc, "/api/v1/asistencias/nada/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Code)
}

func TestAPI_AnualGroupsAndPaginates(t *testing.T) {
	st := memory.New()
	seed(t, st, "2021-05-01", "CENTRAL", "SEQUIA", domain.Quantities{KitSentencia: 1})
	seed(t, st, "2022-05-01", "CENTRAL", "SEQUIA", domain.Quantities{KitSentencia: 2})
	seed(t, st, "2023-05-01", "CENTRAL", "SEQUIA", domain.Quantities{KitSentencia: 3})
	svc := newTestAPI(t, st)

	rec := get(t, svc, "/api/v1/asistencias/anual/?per_page=1&page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Paginated[domain.TotalsRow]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Count)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 2022, resp.Results[0].Anio)
	assert.Equal(t, int64(2), resp.Results[0].Total)
	require.NotNil(t, resp.Next)
	assert.Equal(t, "http://example.com/api/v1/asistencias/anual/?page=3&per_page=1", *resp.Next)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, "http://example.com/api/v1/asistencias/anual/?per_page=1", *resp.Previous)

	rec = get(t, svc, "/api/v1/asistencias/anual/?per_page=1&page=9")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = domain.Paginated[domain.TotalsRow]{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Count)
	assert.Empty(t, resp.Results)
	assert.Nil(t, resp.Next)
}

func TestAPI_HugePageIsPastTheEnd(t *testing.T) {
	st := memory.New()
	seed(t, st, "2021-05-01", "CENTRAL", "SEQUIA", domain.Quantities{KitSentencia: 1})
	svc := newTestAPI(t, st)

	for _, route := range []string{"anual", "detallados"} {
		rec := get(t, svc, "/api/v1/asistencias/"+route+"/?page=100000000000000000&per_page=100")
		require.Equal(t, http.StatusOK, rec.Code, route)

		var resp domain.Paginated[map[string]any]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Count, route)
		assert.Empty(t, resp.Results, route)
		assert.Nil(t, resp.Next, route)
	}
}

func TestAPI_FilterIsCanonicalized(t *testing.T) {
	st := memory.New()
	seed(t, st, "2022-05-01", "ALTO PARAGUAY", "SEQUIA", domain.Quantities{KitEvento: 4})
	seed(t, st, "2022-06-01", "CENTRAL", "INCENDIO", domain.Quantities{KitEvento: 1})
	svc := newTestAPI(t, st)

	rec := get(t, svc, "/api/v1/asistencias/detallados?departamento=%20alto%20%20paraguay%20")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Paginated[domain.DetailRow]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "ALTO PARAGUAY", resp.Results[0].Departamento)
	assert.Equal(t, "2022-05-01", resp.Results[0].Fecha)
}

func TestAPI_Resumen(t *testing.T) {
	st := memory.New()
	seed(t, st, "2022-05-01", "CENTRAL", "SEQUIA", domain.Quantities{KitEvento: 4, Colchones: 1})
	seed(t, st, "2022-06-01", "CENTRAL", "INCENDIO", domain.Quantities{KitEvento: 1})
	svc := newTestAPI(t, st)

	rec := get(t, svc, "/api/v1/asistencias/resumen/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"cantidad_registros_total": 2,
		"cantidad_kit_evento": 5,
		"cantidad_departamentos": 1,
		"cantidad_eventos": 2,
		"unidades_distribuidas": 6
	}`, rec.Body.String())
}

func TestAPI_HealthzAndRequestID(t *testing.T) {
	svc := newTestAPI(t, memory.New())

	rec := get(t, svc, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(constants.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(constants.HeaderRequestID))
}

func TestAPI_Metrics(t *testing.T) {
	svc := newTestAPI(t, memory.New())
	get(t, svc, "/api/v1/asistencias/anual/")

	rec := get(t, svc, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ayudas_http_requests_total")
}
