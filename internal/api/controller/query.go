package controller

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/ayudas/internal/domain"
)

// FilterQuery is the set of query parameters every asistencias endpoint accepts.
type FilterQuery struct {
	FechaDesde   string `query:"fecha_desde" validate:"omitempty,datetime=2006-01-02"`
	FechaHasta   string `query:"fecha_hasta" validate:"omitempty,datetime=2006-01-02"`
	Departamento string `query:"departamento" validate:"max=100"`
	Distrito     string `query:"distrito" validate:"max=100"`
	Localidad    string `query:"localidad" validate:"max=100"`
	Evento       string `query:"evento" validate:"max=100"`
	Anio         int    `query:"anio" validate:"omitempty,gt=0"`
	Mes          int    `query:"mes" validate:"omitempty,min=1,max=12"`
	Producto     string `query:"producto" validate:"omitempty,oneof=kit_sentencia kit_evento chapa_fibrocemento_cantidad chapa_zinc_cantidad colchones_cantidad frazadas_cantidad terciadas_cantidad puntales_cantidad carpas_plasticas_cantidad"`
	Busqueda     string `query:"inputBusqueda" validate:"max=200"`
}

type PageQuery struct {
	Page    int `query:"page" validate:"omitempty,min=1"`
	PerPage int `query:"per_page" validate:"omitempty,min=1"`
}

type listQuery struct {
	FilterQuery
	PageQuery
}

type eventCountsQuery struct {
	FilterQuery
	Nivel string `query:"nivel" validate:"omitempty,oneof=departamento localidad"`
}

// Filter converts the bound query into a domain filter. Names are matched on
// their canonical trimmed upper-case form.
func (q FilterQuery) Filter() (domain.Filter, error) {
	f := domain.Filter{
		Departamento: canonical(q.Departamento),
		Distrito:     canonical(q.Distrito),
		Localidad:    canonical(q.Localidad),
		Evento:       canonical(q.Evento),
		Anio:         q.Anio,
		Mes:          q.Mes,
		Producto:     domain.AidType(q.Producto),
		Busqueda:     strings.TrimSpace(q.Busqueda),
	}
	f.FechaDesde = parseDate(q.FechaDesde)
	f.FechaHasta = parseDate(q.FechaHasta)

	if err := f.Validate(); err != nil {
		return domain.Filter{}, err
	}
	return f, nil
}

func (q PageQuery) toPage() domain.Page {
	return domain.NewPage(q.Page, q.PerPage)
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// parseDate expects a value already checked by the validator.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func bindFilter(ctx echo.Context) (domain.Filter, error) {
	var q FilterQuery
	if err := ctx.Bind(&q); err != nil {
		return domain.Filter{}, err
	}
	return q.Filter()
}

func bindList(ctx echo.Context) (domain.Filter, domain.Page, error) {
	var q listQuery
	if err := ctx.Bind(&q); err != nil {
		return domain.Filter{}, domain.Page{}, err
	}
	f, err := q.FilterQuery.Filter()
	if err != nil {
		return domain.Filter{}, domain.Page{}, err
	}
	return f, q.PageQuery.toPage(), nil
}
