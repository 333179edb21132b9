// Package binance fetches historical klines from the Binance spot REST API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Backtester/internal/model"
	httpClient "github.com/Alias1177/Backtester/internal/platform/http"
)

const (
	// DefaultBaseURL is the public Binance spot endpoint
	DefaultBaseURL = "https://api.binance.com"
	maxLimit       = 1000
)

var intervals = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// numbers stay json.Number so open times keep full int64 precision
var decoder = sonic.Config{UseNumber: true}.Froze()

// Client is the Binance kline client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	MinInterval    time.Duration
	MaxRetryTime   time.Duration
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:      options.RequestTimeout,
			MinInterval:  options.MinInterval,
			MaxRetryTime: options.MaxRetryTime,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
		now:    time.Now,
	}
}

// IntervalDuration returns the bar length of a supported interval
func IntervalDuration(interval string) (time.Duration, error) {
	d, ok := intervals[interval]
	if !ok {
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
	return d, nil
}

// GetCandles fetches the most recent count bars, paging backwards in time.
// The result is ascending, free of duplicates and at most count long.
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]model.Bar, error) {
	step, err := IntervalDuration(interval)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("candle count must be positive, got %d", count)
	}

	var all []model.Bar
	endTime := c.now().UnixMilli()

	for len(all) < count {
		page, err := c.fetchPage(ctx, symbol, interval, endTime)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(page, all...)
		c.logger.Debug().Int("page", len(page)).Int("total", len(all)).Msg("Fetched kline page")

		next := page[0].Timestamp - step.Milliseconds()
		if next < 0 || next >= endTime {
			break
		}
		endTime = next
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp < all[j].Timestamp
	})
	bars, dropped := model.SanitizeBars(all)
	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("Dropped duplicate or malformed klines")
	}
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}

	c.logger.Info().Str("symbol", symbol).Str("interval", interval).Int("count", len(bars)).Msg("Fetched candles")
	return bars, nil
}

func (c *Client) fetchPage(ctx context.Context, symbol, interval string, endTime int64) ([]model.Bar, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("endTime", strconv.FormatInt(endTime, 10))
	query.Set("limit", strconv.Itoa(maxLimit))

	body, err := c.httpClient.Get(ctx, c.baseURL+"/api/v3/klines?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	var rows [][]any
	if err := decoder.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKline reads [openTime, open, high, low, close, volume, ...]
func parseKline(row []any) (model.Bar, error) {
	if len(row) < 6 {
		return model.Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	openTime, ok := row[0].(json.Number)
	if !ok {
		return model.Bar{}, fmt.Errorf("open time has type %T", row[0])
	}
	ts, err := openTime.Int64()
	if err != nil {
		return model.Bar{}, fmt.Errorf("open time: %w", err)
	}

	var values [5]float64
	for i := range values {
		values[i], err = parseDecimal(row[i+1])
		if err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}

	return model.Bar{
		Timestamp: ts,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

func parseDecimal(v any) (float64, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
