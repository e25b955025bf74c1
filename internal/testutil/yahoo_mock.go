package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

// MockYahooClient is a yahoo.Client returning canned data instead of calling Yahoo.
type MockYahooClient struct {
	// MockResponse is the response to return from QueryChart
	MockResponse yahoo.Response
	// MockError is the error to return from QueryChart
	MockError error
	// QueryCount tracks how many times QueryChart was called
	QueryCount int
	// Tickers records the requested tickers in call order
	Tickers []string

	mu sync.Mutex
}

// NewMockYahooClient creates a mock returning five days of prices ending on RefDate+4.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(RefDate, 5),
	}
}

// QueryChart implements yahoo.Client.
func (m *MockYahooClient) QueryChart(_ context.Context, ticker string, _, _ time.Time) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	m.Tickers = append(m.Tickers, ticker)
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the mock to return the specified response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// WithEmptyResponse configures the mock to return a chart without data points.
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.MockResponse = yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{{Meta: yahoo.Meta{Symbol: "TEST-USD", Currency: "USD"}}},
		},
	}
	return m
}

// CreateMockYahooResponse creates a chart of `days` consecutive days starting at start.
// Day i opens at 1000+10i, has a high 20 above the open, a low 10 below it and closes
// 5 above it.
func CreateMockYahooResponse(start time.Time, days int) yahoo.Response {
	timestamps := make([]int64, days)
	opens := make([]*float64, days)
	highs := make([]*float64, days)
	lows := make([]*float64, days)
	closes := make([]*float64, days)
	volumes := make([]*int64, days)

	for i := 0; i < days; i++ {
		timestamps[i] = start.AddDate(0, 0, i).Unix()

		open := 1000.0 + float64(i)*10
		high := open + 20
		low := open - 10
		closePrice := open + 5
		volume := int64(1000000 + i*10000)

		opens[i] = &open
		highs[i] = &high
		lows[i] = &low
		closes[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:         "TEST-USD",
						Currency:       "USD",
						ExchangeName:   "CCC",
						InstrumentType: "CRYPTOCURRENCY",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockYahooErrorResponse creates a response carrying a Yahoo error object.
func CreateMockYahooErrorResponse(code, description string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Error: &yahoo.ChartError{Code: code, Description: description},
		},
	}
}
