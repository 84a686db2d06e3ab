package domain

// Dimension is a column facts can be grouped by.
type Dimension string

const (
	DimAnio         Dimension = "anio"
	DimMes          Dimension = "mes"
	DimDepartamento Dimension = "departamento"
	DimDistrito     Dimension = "distrito"
	DimLocalidad    Dimension = "localidad"
	DimEvento       Dimension = "evento"
)

// LocationDims expands a location level into the hierarchy above and including it.
func LocationDims(level Dimension) []Dimension {
	switch level {
	case DimLocalidad:
		return []Dimension{DimDepartamento, DimDistrito, DimLocalidad}
	case DimDistrito:
		return []Dimension{DimDepartamento, DimDistrito}
	default:
		return []Dimension{DimDepartamento}
	}
}

// GroupKey identifies one group. Only the grouped dimensions are populated.
type GroupKey struct {
	Anio         Year   `db:"anio" json:"anio,omitempty"`
	Mes          int    `db:"mes" json:"mes,omitempty"`
	NombreMes    string `db:"-" json:"nombre_mes,omitempty"`
	Departamento string `db:"departamento" json:"departamento,omitempty"`
	Distrito     string `db:"distrito" json:"distrito,omitempty"`
	Localidad    string `db:"localidad" json:"localidad,omitempty"`
	Evento       string `db:"evento" json:"evento,omitempty"`
}

// Project keeps only the given dimensions of k.
func (k GroupKey) Project(dims []Dimension) GroupKey {
	var out GroupKey
	for _, d := range dims {
		switch d {
		case DimAnio:
			out.Anio = k.Anio
		case DimMes:
			out.Mes = k.Mes
			out.NombreMes = MonthName(k.Mes)
		case DimDepartamento:
			out.Departamento = k.Departamento
		case DimDistrito:
			out.Distrito = k.Distrito
		case DimLocalidad:
			out.Localidad = k.Localidad
		case DimEvento:
			out.Evento = k.Evento
		}
	}
	return out
}

// Compare orders keys by dims: numerically for dates, lexically for names.
func (k GroupKey) Compare(o GroupKey, dims []Dimension) int {
	for _, d := range dims {
		var c int
		switch d {
		case DimAnio:
			c = cmpInt(k.Anio, o.Anio)
		case DimMes:
			c = cmpInt(k.Mes, o.Mes)
		case DimDepartamento:
			c = cmpString(k.Departamento, o.Departamento)
		case DimDistrito:
			c = cmpString(k.Distrito, o.Distrito)
		case DimLocalidad:
			c = cmpString(k.Localidad, o.Localidad)
		case DimEvento:
			c = cmpString(k.Evento, o.Evento)
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// GroupRow is one group of facts: its key, summed quantities and fact count.
type GroupRow struct {
	GroupKey
	Quantities
	Registros int64 `db:"registros"`
}
