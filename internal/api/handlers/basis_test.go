package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/report"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// TestBasisHandler_Run tests running the basis engine over HTTP.
//
// WHY: The run response is what clients show as the tax report. Totals, short/long term
// split and the remaining pool must all come from the same run.
func TestBasisHandler_Run(t *testing.T) {
	setup := func(t *testing.T) (*BasisHandler, string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		user := testutil.NewUser().Build(t, db)
		testutil.StoreTransactions(t, db, user.ID,
			testutil.Buy("2", "BTC", "2000").OnDay(0).Build(),
			testutil.Sell("1", "BTC", "1500").OnDay(400).Build(),
			testutil.Buy("1", "BTC", "3000").OnDay(410).Build(),
			testutil.Sell("1", "BTC", "2000").OnDay(420).Build(),
		)
		return NewBasisHandler(testutil.NewTestBasisService(t, db, nil)), user.ID
	}

	t.Run("returns reports, totals and pool", func(t *testing.T) {
		handler, userID := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/user/"+userID+"/basis",
			map[string]string{"uuid": userID}, map[string]string{"method": "lifo"})
		w := httptest.NewRecorder()
		handler.Run(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp RunResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)

		if resp.Method != "LIFO" || resp.Rounding != "dollars" {
			t.Errorf("Expected LIFO in dollars, got %s in %s", resp.Method, resp.Rounding)
		}
		if len(resp.Reports) != 2 {
			t.Fatalf("Expected 2 reports, got %d", len(resp.Reports))
		}
		// long: 1000 basis, 1500 proceeds. short (LIFO takes the day 410 lot): 3000 basis, 2000 proceeds.
		if !resp.LongTerm.GainOrLoss.Equal(testutil.Dec("500")) || !resp.ShortTerm.GainOrLoss.Equal(testutil.Dec("-1000")) {
			t.Errorf("Unexpected split totals long=%s short=%s", resp.LongTerm.GainOrLoss, resp.ShortTerm.GainOrLoss)
		}
		if !resp.Totals.GainOrLoss.Equal(testutil.Dec("-500")) {
			t.Errorf("Expected total -500, got %s", resp.Totals.GainOrLoss)
		}
		if lots := resp.Pool["BTC"]; len(lots) != 1 || !lots[0].QuantityReceived.Equal(testutil.Dec("1")) {
			t.Errorf("Expected one remaining BTC lot, got %v", lots)
		}
		if resp.Flags == nil {
			t.Error("Expected flags to be an empty list, not null")
		}
	})

	t.Run("rejects an unknown method", func(t *testing.T) {
		handler, userID := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/user/"+userID+"/basis",
			map[string]string{"uuid": userID}, map[string]string{"method": "hifo"})
		w := httptest.NewRecorder()
		handler.Run(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("runs every user", func(t *testing.T) {
		handler, userID := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/basis", nil, map[string]string{"rounding": "cents"})
		w := httptest.NewRecorder()
		handler.RunAll(w, req)

		var summaries []service.RunSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&summaries)
		if w.Code != http.StatusOK || len(summaries) != 1 || summaries[0].UserID != userID || summaries[0].Reports != 2 {
			t.Errorf("Unexpected RunAll result %d %+v", w.Code, summaries)
		}
	})
}

// TestBasisHandler_Reports tests the stored report formats.
func TestBasisHandler_Reports(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.NewUser().Build(t, db)
	testutil.StoreTransactions(t, db, user.ID,
		testutil.Buy("2", "BTC", "2000").OnDay(0).Build(),
		testutil.Sell("1", "BTC", "1500").OnDay(400).Build(),
	)
	handler := NewBasisHandler(testutil.NewTestBasisService(t, db, nil))
	params := map[string]string{"uuid": user.ID}

	w := httptest.NewRecorder()
	handler.Run(w, testutil.NewRequestWithURLParams(http.MethodPost, "/api/user/"+user.ID+"/basis", params))
	if w.Code != http.StatusOK {
		t.Fatalf("Run failed with %d: %s", w.Code, w.Body.String())
	}

	get := func(format string) *httptest.ResponseRecorder {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/user/"+user.ID+"/report", params,
			map[string]string{"format": format})
		w := httptest.NewRecorder()
		handler.Reports(w, req)
		return w
	}

	t.Run("json", func(t *testing.T) {
		w := get("")
		var resp ReportsResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if len(resp.Reports) != 1 || resp.Method != "FIFO" || !resp.Totals.GainOrLoss.Equal(testutil.Dec("500")) {
			t.Errorf("Unexpected stored reports %+v", resp)
		}
	})

	t.Run("csv", func(t *testing.T) {
		w := get("csv")
		if w.Header().Get("Content-Type") != "text/csv" {
			t.Errorf("Expected text/csv, got %q", w.Header().Get("Content-Type"))
		}
		if !strings.HasPrefix(w.Body.String(), strings.Join(report.Columns, ",")) {
			t.Errorf("Expected csv header, got %q", w.Body.String())
		}
	})

	t.Run("8949", func(t *testing.T) {
		w := get("8949")
		if !strings.HasPrefix(w.Body.String(), strings.Join(report.Form8949Columns, ",")) {
			t.Errorf("Expected 8949 header, got %q", w.Body.String())
		}
	})

	t.Run("text", func(t *testing.T) {
		w := get("text")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "BTC") {
			t.Errorf("Expected text summary mentioning BTC, got %d: %q", w.Code, w.Body.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if w := get("pdf"); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("report.csv", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ReportCSV(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+user.ID+"/report.csv", params))
		if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "cost_basis_") {
			t.Errorf("Expected csv attachment, got %d %q", w.Code, w.Header().Get("Content-Disposition"))
		}
	})
}
