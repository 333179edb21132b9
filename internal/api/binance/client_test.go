package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const step = int64(5 * 60 * 1000)

// klineServer serves total 5m klines ending at last, honoring endTime and limit.
func klineServer(t *testing.T, total int, last int64, calls *int32) *httptest.Server {
	t.Helper()
	first := last - int64(total-1)*step

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "5m" {
			http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
			return
		}
		endTime, _ := strconv.ParseInt(q.Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(q.Get("limit"))

		var rows []string
		for ts := first; ts <= last && ts <= endTime; ts += step {
			price := 100 + float64((ts-first)/step)
			rows = append(rows, fmt.Sprintf(`[%d,"%.8f","%.8f","%.8f","%.8f","12.50000000",%d,"0",10,"0","0","0"]`,
				ts, price, price+1, price-1, price+0.5, ts+step-1))
		}
		if len(rows) > limit {
			rows = rows[len(rows)-limit:]
		}
		fmt.Fprintf(w, "[%s]", strings.Join(rows, ","))
	}))
}

func newTestClient(baseURL string, now int64) *Client {
	c := NewClient(ClientOptions{
		BaseURL:        baseURL,
		RequestTimeout: time.Second,
		MinInterval:    time.Millisecond,
		MaxRetryTime:   time.Second,
	})
	c.now = func() time.Time { return time.UnixMilli(now) }
	return c
}

func TestGetCandlesPaginates(t *testing.T) {
	last := int64(1_700_000_000_000)
	tests := []struct {
		name      string
		total     int
		count     int
		wantLen   int
		wantCalls int32
	}{
		{"single page", 2500, 300, 300, 1},
		{"three pages", 2500, 2200, 2200, 3},
		{"more than available", 1500, 3000, 1500, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := klineServer(t, tt.total, last, &calls)
			defer srv.Close()

			bars, err := newTestClient(srv.URL, last+1000).GetCandles(context.Background(), "BTCUSDT", "5m", tt.count)
			if err != nil {
				t.Fatalf("GetCandles: %v", err)
			}
			if len(bars) != tt.wantLen {
				t.Fatalf("len(bars) = %d, want %d", len(bars), tt.wantLen)
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if bars[len(bars)-1].Timestamp != last {
				t.Errorf("last timestamp = %d, want %d", bars[len(bars)-1].Timestamp, last)
			}
			for i := 1; i < len(bars); i++ {
				if bars[i].Timestamp-bars[i-1].Timestamp != step {
					t.Fatalf("gap between bars %d and %d", i-1, i)
				}
			}
		})
	}
}

func TestGetCandlesParsesPrices(t *testing.T) {
	var calls int32
	last := int64(1_700_000_000_000)
	srv := klineServer(t, 10, last, &calls)
	defer srv.Close()

	bars, err := newTestClient(srv.URL, last).GetCandles(context.Background(), "BTCUSDT", "5m", 10)
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	b := bars[9]
	if b.Open != 109 || b.High != 110 || b.Low != 108 || b.Close != 109.5 || b.Volume != 12.5 {
		t.Errorf("bar = %+v", b)
	}
}

func TestGetCandlesErrors(t *testing.T) {
	var calls int32
	srv := klineServer(t, 10, 1_700_000_000_000, &calls)
	defer srv.Close()
	c := newTestClient(srv.URL, 1_700_000_000_000)

	if _, err := c.GetCandles(context.Background(), "BTCUSDT", "7m", 10); err == nil {
		t.Error("unsupported interval accepted")
	}
	if _, err := c.GetCandles(context.Background(), "BTCUSDT", "5m", 0); err == nil {
		t.Error("zero count accepted")
	}
	if _, err := c.GetCandles(context.Background(), "NOPE", "5m", 10); err == nil {
		t.Error("invalid symbol returned no error")
	}
}

func TestParseKline(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr bool
	}{
		{"short row", []any{"1"}, true},
		{"bad price", []any{jsonNumber("1"), "x", "1", "1", "1", "1"}, true},
		{"string open time", []any{"1", "1", "1", "1", "1", "1"}, true},
		{"valid", []any{jsonNumber("1"), "1.5", "2", "1", "1.75", "3"}, false},
	}
	for _, tt := range tests {
		_, err := parseKline(tt.row)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func jsonNumber(s string) any {
	return json.Number(s)
}
