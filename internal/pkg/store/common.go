package store

import (
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/constants"
)

const (
	tableFechas     = "dim_fecha"
	tableUbicacion  = "dim_ubicacion"
	tableEventos    = "dim_evento"
	tableHechos     = "hechos_asistencia_humanitaria"
	tableRuns       = "etl_runs"
	factsFromClause = tableHechos + " f" +
		" JOIN " + tableFechas + " d ON d.id_fecha = f.id_fecha" +
		" JOIN " + tableUbicacion + " u ON u.id_ubicacion = f.id_ubicacion" +
		" JOIN " + tableEventos + " e ON e.id_evento = f.id_evento"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// dimensionColumns maps a grouping dimension onto its joined column.
var dimensionColumns = map[domain.Dimension]string{
	domain.DimAnio:         "d.anio",
	domain.DimMes:          "d.mes",
	domain.DimDepartamento: "u.departamento",
	domain.DimDistrito:     "u.distrito",
	domain.DimLocalidad:    "u.localidad",
	domain.DimEvento:       "e.evento",
}

func quantityColumns(prefix string) []string {
	cols := make([]string, 0, len(domain.AidTypes))
	for _, t := range domain.AidTypes {
		cols = append(cols, prefix+string(t))
	}
	return cols
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
