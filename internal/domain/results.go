package domain

// TotalsRow is a group with every aid column summed plus a grand total.
type TotalsRow struct {
	GroupKey
	NumeroOcurrencias int64 `json:"numeroOcurrencias,omitempty"`
	Quantities
	Total int64 `json:"total"`
}

// CountRow is a group with its number of occurrences only.
type CountRow struct {
	GroupKey
	NumeroEventos int64 `json:"numero_eventos"`
}

// StackedRow maps every aid type to its sum inside the group.
type StackedRow struct {
	GroupKey
	Cantidades map[string]int64 `json:"cantidades"`
	Total      int64            `json:"total"`
}

// SeriesRow is a single value per group: one product or the grand total.
type SeriesRow struct {
	GroupKey
	Producto             string `json:"producto,omitempty"`
	UnidadesDistribuidas int64  `json:"unidades_distribuidas"`
}

// FireStatsRow summarises INCENDIO facts for one year and department.
type FireStatsRow struct {
	GroupKey
	NumeroEventos        int64 `json:"numero_eventos"`
	Chapas               int64 `json:"chapas"`
	UnidadesDistribuidas int64 `json:"unidades_distribuidas"`
	Quantities
}

type Summary struct {
	CantidadRegistrosTotal int64 `json:"cantidad_registros_total"`
	CantidadKitEvento      int64 `json:"cantidad_kit_evento"`
	CantidadDepartamentos  int64 `json:"cantidad_departamentos"`
	CantidadEventos        int64 `json:"cantidad_eventos"`
	UnidadesDistribuidas   int64 `json:"unidades_distribuidas"`
}

type DepartmentSummary struct {
	Departamento string `json:"departamento"`
	Quantities
	CantidadRegistros  int64  `json:"cantidad_registros"`
	EventoMasFrecuente string `json:"evento_mas_frecuente"`
}

// Paginated is the envelope of paginated endpoints.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
