package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stockpulse/internal/adapters/config"
	"stockpulse/internal/metrics"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Client fetches quotes from the Yahoo Finance quote endpoint.
// Requests carry a bounded timeout and are retried once on transport
// failure; after that the call fails with ErrGatewayUnavailable.
// Symbols unknown to the source are simply absent from the result map.
type Client struct {
	baseURL    string
	batchSize  int
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new market data client
func NewClient(cfg config.MarketDataConfig) *Client {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		batchSize: batchSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.Get().With("component", "marketdata_client"),
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketTime          int64   `json:"regularMarketTime"`
			Currency                   string  `json:"currency"`
			MarketState                string  `json:"marketState"`
			MarketCap                  float64 `json:"marketCap"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// GetQuotes fetches current quotes for the given symbols. Batches are
// fetched concurrently; a symbol missing from the response is a partial
// failure reported by its absence from the returned map.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	if len(symbols) == 0 {
		return map[string]Quote{}, nil
	}

	quotes := make(map[string]Quote, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(symbols); start += c.batchSize {
		end := start + c.batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		g.Go(func() error {
			fetched, err := c.fetchBatch(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for sym, q := range fetched {
				quotes[sym] = q
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// fetchBatch requests one batch, retrying once on transport failure
func (c *Client) fetchBatch(ctx context.Context, symbols []string) (map[string]Quote, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		fetched, err := c.doRequest(ctx, symbols)
		if err == nil {
			metrics.GatewayRequests.WithLabelValues("ok").Inc()
			return fetched, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.log.Warnf("Quote request failed (attempt %d): %v", attempt+1, err)
	}
	metrics.GatewayRequests.WithLabelValues("error").Inc()
	return nil, errors.Wrapf(errors.ErrGatewayUnavailable, "fetch quotes for %s: %v",
		strings.Join(symbols, ","), lastErr)
}

func (c *Client) doRequest(ctx context.Context, symbols []string) (map[string]Quote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stockpulse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal quote response: %w", err)
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote endpoint error: %s", parsed.QuoteResponse.Error.Description)
	}

	quotes := make(map[string]Quote, len(parsed.QuoteResponse.Result))
	for _, r := range parsed.QuoteResponse.Result {
		if r.RegularMarketPrice == 0 {
			// No tradable price; treat as unknown symbol
			continue
		}
		quotes[r.Symbol] = Quote{
			Symbol:        r.Symbol,
			Name:          r.ShortName,
			Price:         decimal.NewFromFloat(r.RegularMarketPrice),
			PreviousClose: decimal.NewFromFloat(r.RegularMarketPreviousClose),
			ChangePct:     decimal.NewFromFloat(r.RegularMarketChangePercent),
			Currency:      r.Currency,
			MarketState:   r.MarketState,
			MarketCap:     r.MarketCap,
			YearHigh:      r.FiftyTwoWeekHigh,
			YearLow:       r.FiftyTwoWeekLow,
			AsOf:          time.Unix(r.RegularMarketTime, 0).UTC(),
		}
	}
	return quotes, nil
}
