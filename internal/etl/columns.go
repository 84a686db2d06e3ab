package etl

import (
	"fmt"
	"strings"

	"github.com/ougirez/ayudas/internal/domain"
)

// Column is a canonical source column.
type Column string

const (
	ColFecha        Column = "fecha"
	ColDepartamento Column = "departamento"
	ColDistrito     Column = "distrito"
	ColLocalidad    Column = "localidad"
	ColEvento       Column = "evento"
)

var requiredColumns = []Column{ColFecha, ColDepartamento, ColEvento}

var headerAliases = func() map[string]Column {
	m := map[string]Column{
		"FECHA":        ColFecha,
		"DEPARTAMENTO": ColDepartamento,
		"DPTO":         ColDepartamento,
		"DISTRITO":     ColDistrito,
		"LOCALIDAD":    ColLocalidad,
		"EVENTO":       ColEvento,

		"KIT A":              Column(domain.KitSentencia),
		"KIT B":              Column(domain.KitEvento),
		"KIT EVENTOS":        Column(domain.KitEvento),
		"CHAPA FIBROCEMENTO": Column(domain.ChapaFibrocemento),
		"CHAPA ZINC":         Column(domain.ChapaZinc),
		"COLCHONES":          Column(domain.Colchones),
		"FRAZADAS":           Column(domain.Frazadas),
		"TERCIADAS":          Column(domain.Terciadas),
		"PUNTALES":           Column(domain.Puntales),
		"CARPAS PLASTICAS":   Column(domain.CarpasPlasticas),
	}
	for _, t := range domain.AidTypes {
		m[normalizeHeader(string(t))] = Column(t)
	}
	return m
}()

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return fold(strings.ReplaceAll(h, "_", " "))
}

// Record is one data row of a source keyed by canonical column.
type Record struct {
	// Line is the 1-based position of the row below the header.
	Line   int
	Fields map[Column]string
}

func (r Record) Get(c Column) string {
	return r.Fields[c]
}

// mapHeader resolves header cells to canonical columns. The first cell mentioning
// FECHA is the date when no exact date column exists.
func mapHeader(header []string) (map[Column]int, error) {
	positions := make(map[Column]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if col, ok := headerAliases[key]; ok {
			if _, dup := positions[col]; !dup {
				positions[col] = i
			}
		}
	}
	if _, ok := positions[ColFecha]; !ok {
		for i, h := range header {
			if strings.Contains(normalizeHeader(h), "FECHA") {
				positions[ColFecha] = i
				break
			}
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := positions[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns absent: %s", strings.Join(missing, ", "))
	}

	return positions, nil
}

// buildRecords turns a header and its data rows into records. Fully blank rows are dropped.
func buildRecords(name string, header []string, rows [][]string) ([]Record, error) {
	if len(header) == 0 || allBlank(header) {
		return nil, newSourceError(name, errNoHeader)
	}

	positions, err := mapHeader(header)
	if err != nil {
		return nil, newSourceError(name, err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if allBlank(row) {
			continue
		}
		fields := make(map[Column]string, len(positions))
		for col, pos := range positions {
			if pos < len(row) {
				fields[col] = row[pos]
			}
		}
		records = append(records, Record{Line: i + 1, Fields: fields})
	}

	return records, nil
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
