package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatHTML     = "html"
	FormatPostgres = "postgres"
)

var errNoHeader = errors.New("no header row")

// SourceError means the source as a whole cannot be read. A run aborts on it before any write.
type SourceError struct {
	Source string
	Err    error
}

func newSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Source yields every record of a raw dataset.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]Record, error)
}

type SourceConfig struct {
	Format string
	// Location is a file path, an http(s) URL for html, or a table name for postgres.
	Location string
	// CSVDelimiter defaults to ','.
	CSVDelimiter rune
	// Sheet selects an xlsx sheet by name; the first sheet otherwise.
	Sheet string
}

// NewSource builds the reader for cfg.Format. db is only used by postgres sources.
func NewSource(cfg SourceConfig, db *xpgx.Pool) (Source, error) {
	if cfg.Location == "" {
		return nil, eris.New("etl: empty source location")
	}

	format := cfg.Format
	if format == "" {
		format = formatFromExt(cfg.Location)
	}

	switch format {
	case FormatCSV:
		return &CSVSource{Path: cfg.Location, Delimiter: cfg.CSVDelimiter}, nil
	case FormatXLSX:
		return &XLSXSource{Path: cfg.Location, Sheet: cfg.Sheet}, nil
	case FormatHTML:
		return &HTMLSource{Location: cfg.Location}, nil
	case FormatPostgres:
		if db == nil {
			return nil, eris.New("etl: postgres source needs a source database")
		}
		return &PostgresSource{Table: cfg.Location, pool: db}, nil
	}

	return nil, eris.Errorf("etl: unknown source format %q", format)
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".xlsx":
		return FormatXLSX
	case ".html", ".htm":
		return FormatHTML
	}
	return FormatCSV
}

type CSVSource struct {
	Path      string
	Delimiter rune
}

func (s *CSVSource) Name() string {
	return s.Path
}

func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, newSourceError(s.Path, eris.Wrap(err, "csv: open file"))
	}
	defer f.Close()

	return readCSV(ctx, s.Path, f, s.Delimiter)
}

func readCSV(ctx context.Context, name string, r io.Reader, delimiter rune) ([]Record, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, newSourceError(name, errNoHeader)
	}
	if err != nil {
		return nil, newSourceError(name, eris.Wrap(err, "csv: read header"))
	}

	var rows [][]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newSourceError(name, eris.Wrap(err, "csv: read row"))
		}
		rows = append(rows, row)
	}

	return buildRecords(name, header, rows)
}

type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Name() string {
	return s.Path
}

func (s *XLSXSource) Records(_ context.Context) ([]Record, error) {
	f, err := xlsx.OpenFile(s.Path)
	if err != nil {
		return nil, newSourceError(s.Path, eris.Wrap(err, "xlsx: open file"))
	}

	var sheet *xlsx.Sheet
	if s.Sheet != "" {
		var ok bool
		if sheet, ok = f.Sheet[s.Sheet]; !ok {
			return nil, newSourceError(s.Path, eris.Errorf("xlsx: sheet %q not found", s.Sheet))
		}
	} else {
		if len(f.Sheets) == 0 {
			return nil, newSourceError(s.Path, errNoHeader)
		}
		sheet = f.Sheets[0]
	}
	if len(sheet.Rows) == 0 {
		return nil, newSourceError(s.Path, errNoHeader)
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cellString(cell)
		}
		rows = append(rows, cells)
	}

	return buildRecords(s.Path, rows[0], rows[1:])
}

// cellString keeps numeric cells raw, so dates arrive as serials and quantities unformatted.
func cellString(cell *xlsx.Cell) string {
	if cell.Type() == xlsx.CellTypeNumeric {
		return cell.Value
	}
	return cell.String()
}
