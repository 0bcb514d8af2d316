package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/market"
)

const header = `<tr><th>날짜</th><th>종가</th><th>전일비</th><th>시가</th><th>고가</th><th>저가</th><th>거래량</th></tr>`

func row(date string, close int) string {
	return fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td><span class="blind">상승</span> 1,000</td><td>%d</td><td>%d</td><td>%d</td><td>120,000</td></tr>`,
		date, strconv.Itoa(close), close-500, close+1000, close-1000)
}

// page renders five rows newest first; day counts down from start.
func page(start time.Time, offset int, blankAt int) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table class="type2">` + header)
	sb.WriteString(`<tr><td colspan="7"></td></tr>`)
	for i := 0; i < 5; i++ {
		d := start.AddDate(0, 0, -(offset + i))
		if i == blankAt {
			sb.WriteString(fmt.Sprintf(`<tr><td>%s</td><td></td><td></td><td></td><td></td><td></td><td></td></tr>`, d.Format("2006.01.02")))
			continue
		}
		sb.WriteString(row(d.Format("2006.01.02"), 400000+offset+i))
	}
	sb.WriteString(`</table><table class="Nnavi"><tr><td>1</td></tr></table></body></html>`)
	return sb.String()
}

func newClient(url string, pages int) *Client {
	return NewClient(Options{
		PriceURL:  url,
		UserAgent: "Mozilla/5.0",
		Pages:     pages,
		Timeout:   5 * time.Second,
	}, logger.Discard())
}

func TestFetchHistoryThreePages(t *testing.T) {
	start := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	var requested []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "051910", r.URL.Query().Get("code"))
		p, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		requested = append(requested, p)

		blank := -1
		switch p {
		case 1:
			blank = 2
		case 3:
			blank = 4
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page(start, (p-1)*5, blank))
	}))
	defer srv.Close()

	raw, err := newClient(srv.URL+"/item/sise_day.naver", 3).FetchHistory(context.Background(), "051910")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, requested)
	// three separator rows plus fifteen data rows
	require.Len(t, raw, 18)
	assert.Equal(t, "2024.06.30", raw[1].Date)
	assert.Equal(t, "상승 1,000", raw[1].Diff)

	h, err := market.Clean(raw)
	require.NoError(t, err)
	require.Len(t, h, 13)
	for i := 1; i < len(h); i++ {
		assert.True(t, h[i].Date.After(h[i-1].Date))
	}
	last, _ := h.Latest()
	assert.Equal(t, int64(400000), last.Close)
	assert.Equal(t, int64(1000), last.Diff)
	assert.Equal(t, int64(120000), last.Volume)
}

func TestFetchHistoryRequestsEveryPage(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `<html><body><p>no data</p></body></html>`)
	}))
	defer srv.Close()

	raw, err := newClient(srv.URL, 4).FetchHistory(context.Background(), "000123")
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Equal(t, 4, hits)
}

func TestFetchHistoryAbortsOnFailure(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, page(time.Now(), 0, -1))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 5).FetchHistory(context.Background(), "000123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 2, hits)
}

func TestFetchHistoryHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(time.Now(), 0, -1))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(srv.URL, 2).FetchHistory(ctx, "000123")
	assert.Error(t, err)
}

func TestPageURLKeepsExistingQuery(t *testing.T) {
	c := newClient("https://finance.naver.com/item/sise_day.naver?lang=ko", 1)
	u, err := c.pageURL("005930", 7)
	require.NoError(t, err)
	assert.Equal(t, "https://finance.naver.com/item/sise_day.naver?code=005930&lang=ko&page=7", u)
}
