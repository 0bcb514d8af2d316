package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/camuig/krx-stock-report/internal/htmltable"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
)

// Client reads the paginated daily-price listing of the quote site.
type Client struct {
	httpClient *http.Client
	priceURL   string
	userAgent  string
	pages      int
	limiter    *rate.Limiter
	logger     *logger.Logger
}

type Options struct {
	PriceURL          string
	UserAgent         string
	Pages             int
	Timeout           time.Duration
	RequestsPerSecond float64
}

func NewClient(opts Options, log *logger.Logger) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		priceURL:   opts.PriceURL,
		userAgent:  opts.UserAgent,
		pages:      opts.Pages,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     log,
	}
}

var _ market.PriceSource = (*Client)(nil)

// FetchHistory requests pages 1..N in order and concatenates their rows. Every
// page is requested even when an earlier one is empty; the first failed
// request aborts the fetch.
func (c *Client) FetchHistory(ctx context.Context, code string) ([]market.RawRecord, error) {
	var all []market.RawRecord

	for page := 1; page <= c.pages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		records, err := c.fetchPage(ctx, code, page)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("price page fetched", "code", code, "page", page, "records", len(records))
		all = append(all, records...)
	}

	c.logger.Info("price history fetched", "code", code, "pages", c.pages, "records", len(all))
	return all, nil
}

func (c *Client) pageURL(code string, page int) (string, error) {
	u, err := url.Parse(c.priceURL)
	if err != nil {
		return "", fmt.Errorf("parse price url: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) fetchPage(ctx context.Context, code string, page int) ([]market.RawRecord, error) {
	addr, err := c.pageURL(code, page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("create page %d request: %w", page, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price page %d returned status %d", page, resp.StatusCode)
	}

	tables, err := htmltable.Parse(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}
	return RecordsFromTables(tables), nil
}

// RecordsFromTables picks the first table whose header carries the date column
// and converts its rows to raw records in source order. Columns the source
// does not provide stay empty, which makes the record incomplete.
func RecordsFromTables(tables []htmltable.Table) []market.RawRecord {
	for _, t := range tables {
		if !hasDateColumn(t) {
			continue
		}
		records := make([]market.RawRecord, 0, len(t.Rows))
		for _, row := range t.Records() {
			var rec market.RawRecord
			for header, value := range row {
				if field, ok := market.SourceFields[header]; ok {
					rec.Set(field, value)
				}
			}
			records = append(records, rec)
		}
		return records
	}
	return nil
}

func hasDateColumn(t htmltable.Table) bool {
	for _, h := range t.Header {
		if market.SourceFields[h] == market.FieldDate {
			return true
		}
	}
	return false
}
