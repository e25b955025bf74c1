package yahoo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

func TestTicker(t *testing.T) {
	if got := yahoo.Ticker(" btc "); got != "BTC-USD" {
		t.Errorf("Ticker() = %q, want BTC-USD", got)
	}
}

// TestFinanceClient_QueryChart tests the HTTP client against a fake chart endpoint.
//
// WHY: The price backfill depends on the request shape (ticker in the path, unix
// periods in the query) and on Yahoo's in-band error object being surfaced.
func TestFinanceClient_QueryChart(t *testing.T) {
	t.Run("requests ticker and period and decodes the chart", func(t *testing.T) {
		var gotPath, gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			//nolint:errcheck // Test server
			json.NewEncoder(w).Encode(testutil.CreateMockYahooResponse(testutil.RefDate, 3))
		}))
		defer server.Close()

		client := yahoo.NewFinanceClientWithBaseURL(server.URL + "/")
		resp, err := client.QueryChart(context.Background(), "BTC-USD", testutil.Day(0), testutil.Day(3))
		if err != nil {
			t.Fatalf("QueryChart() returned unexpected error: %v", err)
		}

		if gotPath != "/BTC-USD" {
			t.Errorf("Expected path /BTC-USD, got %s", gotPath)
		}
		if !strings.Contains(gotQuery, "interval=1d") || !strings.Contains(gotQuery, "period1=1483228800") {
			t.Errorf("Unexpected query %q", gotQuery)
		}
		if len(resp.Chart.Result[0].Timestamp) != 3 {
			t.Errorf("Expected 3 timestamps, got %d", len(resp.Chart.Result[0].Timestamp))
		}
	})

	t.Run("surfaces yahoo error object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			//nolint:errcheck // Test server
			json.NewEncoder(w).Encode(testutil.CreateMockYahooErrorResponse("Not Found", "No data found, symbol may be delisted"))
		}))
		defer server.Close()

		client := yahoo.NewFinanceClientWithBaseURL(server.URL)
		_, err := client.QueryChart(context.Background(), "NOPE-USD", testutil.Day(0), testutil.Day(1))
		if err == nil || !strings.Contains(err.Error(), "symbol may be delisted") {
			t.Errorf("Expected yahoo error, got %v", err)
		}
	})
}

func TestParseChart(t *testing.T) {
	t.Run("parses days at midnight UTC", func(t *testing.T) {
		chart, err := yahoo.ParseChart(testutil.CreateMockYahooResponse(testutil.RefDate.Add(14*time.Hour), 2))
		if err != nil {
			t.Fatalf("ParseChart() returned unexpected error: %v", err)
		}
		if len(chart.Indicators) != 2 {
			t.Fatalf("Expected 2 indicators, got %d", len(chart.Indicators))
		}
		ind, ok := chart.GetIndicatorForDate(testutil.Day(1).Add(23 * time.Hour))
		if !ok {
			t.Fatal("Expected indicator for day 1")
		}
		if !ind.PriceHigh.Equal(testutil.Dec("1030")) {
			t.Errorf("Expected high 1030, got %s", ind.PriceHigh)
		}
	})

	t.Run("skips days with null prices", func(t *testing.T) {
		resp := testutil.CreateMockYahooResponse(testutil.RefDate, 3)
		resp.Chart.Result[0].Indicators.Quote[0].High[1] = nil

		chart, err := yahoo.ParseChart(resp)
		if err != nil {
			t.Fatalf("ParseChart() returned unexpected error: %v", err)
		}
		if _, ok := chart.GetIndicatorForDate(testutil.Day(1)); ok {
			t.Error("Expected day with null high to be skipped")
		}
	})

	t.Run("empty chart is ErrNoData", func(t *testing.T) {
		resp := testutil.NewMockYahooClient().WithEmptyResponse().MockResponse
		if _, err := yahoo.ParseChart(resp); !errors.Is(err, yahoo.ErrNoData) {
			t.Errorf("Expected ErrNoData, got %v", err)
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		resp := testutil.CreateMockYahooResponse(testutil.RefDate, 3)
		resp.Chart.Result[0].Indicators.Quote[0].Close = resp.Chart.Result[0].Indicators.Quote[0].Close[:2]
		if _, err := yahoo.ParseChart(resp); err == nil {
			t.Error("Expected error for mismatched data lengths")
		}
	})
}
