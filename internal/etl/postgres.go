package etl

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
	"github.com/rotisserie/eris"
)

// DefaultSourceTable is the raw operational table of the aid records.
const DefaultSourceTable = "asistencia_humanitaria"

// PostgresSource extracts every row of a table in the operational database.
type PostgresSource struct {
	Table string
	pool  *xpgx.Pool
}

func NewPostgresSource(pool *xpgx.Pool, table string) *PostgresSource {
	if table == "" {
		table = DefaultSourceTable
	}
	return &PostgresSource{Table: table, pool: pool}
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.Table
}

func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	table := pgx.Identifier(strings.Split(s.Table, ".")).Sanitize()
	sqlStr, args, err := sq.Select("*").From(table).ToSql()
	if err != nil {
		return nil, newSourceError(s.Name(), eris.Wrap(err, "postgres: build query"))
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, newSourceError(s.Name(), eris.Wrap(err, "postgres: query"))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	var data [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, newSourceError(s.Name(), eris.Wrap(err, "postgres: read row"))
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = valueString(v)
		}
		data = append(data, cells)
	}
	if err = rows.Err(); err != nil {
		return nil, newSourceError(s.Name(), eris.Wrap(err, "postgres: iterate rows"))
	}

	return buildRecords(s.Name(), header, data)
}

func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(domain.DateLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return ""
		}
		return valueString(dv)
	}
	return fmt.Sprint(v)
}
