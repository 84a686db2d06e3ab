package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ougirez/ayudas/internal/pkg/constants"
)

const DateLayout = "2006-01-02"

// Filter is the validated set of predicates every query understands.
// Zero values mean "not set".
type Filter struct {
	FechaDesde   *time.Time
	FechaHasta   *time.Time
	Departamento string
	Distrito     string
	Localidad    string
	Evento       string
	Anio         Year
	Mes          int
	Producto     AidType
	Busqueda     string
}

func (f Filter) Validate() error {
	if f.Anio < 0 {
		return constants.ValidationError("anio", "must be a positive integer")
	}
	if f.Mes != 0 && (f.Mes < 1 || f.Mes > 12) {
		return constants.ValidationError("mes", "must be between 1 and 12")
	}
	if f.FechaDesde != nil && f.FechaHasta != nil && f.FechaDesde.After(*f.FechaHasta) {
		return constants.ValidationError("fecha_desde", "must not be after fecha_hasta")
	}
	if f.Producto != "" {
		if _, ok := ParseAidType(string(f.Producto)); !ok {
			return constants.ValidationError("producto", "unknown aid type %q", f.Producto)
		}
	}
	return nil
}

// CacheKey is a canonical, order-stable rendering of the filter.
func (f Filter) CacheKey() string {
	parts := make([]string, 0, 10)
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	if f.FechaDesde != nil {
		add("fecha_desde", f.FechaDesde.Format(DateLayout))
	}
	if f.FechaHasta != nil {
		add("fecha_hasta", f.FechaHasta.Format(DateLayout))
	}
	add("departamento", f.Departamento)
	add("distrito", f.Distrito)
	add("localidad", f.Localidad)
	add("evento", f.Evento)
	if f.Anio != 0 {
		add("anio", strconv.Itoa(f.Anio))
	}
	if f.Mes != 0 {
		add("mes", strconv.Itoa(f.Mes))
	}
	add("producto", string(f.Producto))
	add("q", strings.ToUpper(f.Busqueda))
	return strings.Join(parts, "&")
}

// LocationLevel is the finest location dimension implied by the filter.
func (f Filter) LocationLevel() Dimension {
	switch {
	case f.Localidad != "" || f.Distrito != "":
		return DimLocalidad
	case f.Departamento != "":
		return DimDistrito
	default:
		return DimDepartamento
	}
}

// Page selects a 1-based page of Size rows.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = constants.DefaultPerPage
	}
	if size > constants.MaxPerPage {
		size = constants.MaxPerPage
	}
	if number > constants.MaxPage {
		number = constants.MaxPage
	}
	return Page{Number: number, Size: size}
}

// Offset saturates at math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

func (p Page) String() string {
	return fmt.Sprintf("page=%d&per_page=%d", p.Number, p.Size)
}
