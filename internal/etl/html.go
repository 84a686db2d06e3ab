package etl

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// HTMLSource reads the first table of an exported HTML report, from disk or over http(s).
type HTMLSource struct {
	Location string
	// Selector picks the table; "table" when empty.
	Selector string
	Client   *http.Client
}

func (s *HTMLSource) Name() string {
	return s.Location
}

func (s *HTMLSource) Records(ctx context.Context) ([]Record, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, newSourceError(s.Location, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, newSourceError(s.Location, eris.Wrap(err, "html: parse document"))
	}

	selector := s.Selector
	if selector == "" {
		selector = "table"
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, newSourceError(s.Location, eris.Errorf("html: no element matches %q", selector))
	}

	var header []string
	var rows [][]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := make([]string, 0, 16)
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if header == nil {
			header = cells
			return
		}
		rows = append(rows, cells)
	})

	return buildRecords(s.Location, header, rows)
}

func (s *HTMLSource) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.Location, "http://") && !strings.HasPrefix(s.Location, "https://") {
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, eris.Wrap(err, "html: open file")
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, eris.Wrap(err, "html: build request")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "html: fetch")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, eris.Errorf("html: status code error: %d %s", resp.StatusCode, resp.Status)
	}

	return resp.Body, nil
}
