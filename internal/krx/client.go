package krx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/camuig/krx-stock-report/internal/htmltable"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
)

// Directory column headers in the KRX corp-list download.
const (
	companyColumn = "회사명"
	codeColumn    = "종목코드"
)

type Client struct {
	httpClient   *http.Client
	directoryURL string
	userAgent    string
	logger       *logger.Logger
}

func NewClient(directoryURL, userAgent string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		directoryURL: directoryURL,
		userAgent:    userAgent,
		logger:       log,
	}
}

// FetchDirectory downloads the full listed-company directory.
func (c *Client) FetchDirectory(ctx context.Context) (market.SymbolTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directoryURL, nil)
	if err != nil {
		return market.SymbolTable{}, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return market.SymbolTable{}, fmt.Errorf("fetch company directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return market.SymbolTable{}, fmt.Errorf("KRX directory returned status %d", resp.StatusCode)
	}

	tables, err := htmltable.Parse(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return market.SymbolTable{}, fmt.Errorf("parse company directory: %w", err)
	}

	table, err := ParseDirectory(tables)
	if err != nil {
		return market.SymbolTable{}, err
	}

	c.logger.Debug("company directory fetched", "companies", table.Len())
	return table, nil
}

// ParseDirectory builds the symbol table from the first table carrying both
// the company and code columns. Codes are zero-padded to market.CodeWidth.
func ParseDirectory(tables []htmltable.Table) (market.SymbolTable, error) {
	for _, t := range tables {
		nameIdx, codeIdx := t.Column(companyColumn), t.Column(codeColumn)
		if nameIdx < 0 || codeIdx < 0 {
			continue
		}

		symbols := make([]market.Symbol, 0, len(t.Rows))
		for _, row := range t.Rows {
			if len(row) <= nameIdx || len(row) <= codeIdx {
				continue
			}
			name, code := row[nameIdx], market.PadCode(row[codeIdx])
			if name == "" || code == "" {
				continue
			}
			symbols = append(symbols, market.Symbol{Company: name, Code: code})
		}
		return market.NewSymbolTable(symbols), nil
	}
	return market.SymbolTable{}, fmt.Errorf("company directory has no %s/%s table", companyColumn, codeColumn)
}
