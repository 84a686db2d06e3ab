package controller

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/ayudas/internal/aggregate"
	"github.com/ougirez/ayudas/internal/domain"
)

// paginated wraps one page of results. next and previous repeat the request URL
// with page rewritten and are nil at the boundaries.
func paginated[T any](base *url.URL, count int64, page domain.Page, results []T) domain.Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := domain.Paginated[T]{Count: count, Results: results}

	if int64(page.Offset()) < count-int64(page.Size) {
		out.Next = pageURL(base, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageURL(base, page.Number-1)
	}
	return out
}

// paginatedSlice pages through an already computed result set.
func paginatedSlice[T any](base *url.URL, items []T, page domain.Page) domain.Paginated[T] {
	return paginated(base, int64(len(items)), page, aggregate.Slice(items, page))
}

func pageURL(base *url.URL, number int) *string {
	u := *base
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// requestURL is the absolute URL of the current request. A configured public URL
// replaces scheme and host.
func (c *Controller) requestURL(ctx echo.Context) *url.URL {
	req := ctx.Request()
	u := &url.URL{
		Scheme:   ctx.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
	}
	if c.publicURL != nil {
		u.Scheme = c.publicURL.Scheme
		u.Host = c.publicURL.Host
		u.Path = strings.TrimSuffix(c.publicURL.Path, "/") + u.Path
	}
	return u
}
