// Package yahoo is a small client for the Yahoo Finance chart API, used to backfill
// daily crypto prices quoted in USD.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// ErrNoData is returned by ParseChart for a chart without a single data point.
var ErrNoData = errors.New("no price data returned")

// Client fetches daily charts.
type Client interface {
	QueryChart(ctx context.Context, ticker string, startDate, endDate time.Time) (Response, error)
}

// FinanceClient is the HTTP implementation of Client.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient returns a client for the public endpoint.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithBaseURL(DefaultBaseURL)
}

// NewFinanceClientWithBaseURL returns a client for another chart endpoint, e.g. an
// httptest server.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Ticker returns the Yahoo ticker of a crypto asset quoted in USD, e.g. "BTC-USD".
func Ticker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "-USD"
}

// QueryChart fetches daily data for ticker between startDate and endDate.
func (c *FinanceClient) QueryChart(ctx context.Context, ticker string, startDate, endDate time.Time) (Response, error) {
	url := fmt.Sprintf(
		"%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		ticker,
		startDate.Unix(),
		endDate.Unix(),
	)
	result, err := c.query(ctx, url)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for ticker %s", ticker)
	}
	return result, nil
}

func (c *FinanceClient) query(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("yahoo returned status %d with unreadable body: %w", resp.StatusCode, err)
	}
	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	return response, nil
}

// ParseChart converts a raw response into a PriceChart. Days where any of the four
// prices is null are skipped.
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no chart result")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, ErrNoData
	}
	if len(result.Indicators.Quote) == 0 {
		return PriceChart{}, fmt.Errorf("no quotes returned")
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC()
		indicators = append(indicators, Indicators{
			Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			PriceOpen:  decimal.NewFromFloat(*quote.Open[i]),
			PriceHigh:  decimal.NewFromFloat(*quote.High[i]),
			PriceLow:   decimal.NewFromFloat(*quote.Low[i]),
			PriceClose: decimal.NewFromFloat(*quote.Close[i]),
		})
	}

	return PriceChart{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		ExchangeName: result.Meta.ExchangeName,
		Indicators:   indicators,
	}, nil
}

// GetIndicatorForDate returns the entry for the calendar day of target.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	for _, ind := range c.Indicators {
		if ind.Date.Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}
