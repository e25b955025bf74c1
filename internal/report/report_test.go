package report_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/report"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

func sampleBatch(t *testing.T) *model.ReportBatch {
	t.Helper()

	short, err := model.NewCostBasisReport(model.ReportParams{
		Asset:         "BTC",
		Quantity:      testutil.Dec("0.5"),
		Basis:         testutil.Dec("100"),
		Proceeds:      testutil.Dec("250"),
		DatePurchased: testutil.Day(0),
		DateSold:      testutil.Day(30),
	}, model.RoundDollars)
	if err != nil {
		t.Fatalf("NewCostBasisReport() returned unexpected error: %v", err)
	}
	long, err := model.NewCostBasisReport(model.ReportParams{
		Asset:          "ETH",
		SecondaryAsset: "BTC",
		Quantity:       testutil.Dec("3"),
		Basis:          testutil.Dec("400"),
		Proceeds:       testutil.Dec("300"),
		DatePurchased:  testutil.Day(0),
		DateSold:       testutil.Day(400),
	}, model.RoundDollars)
	if err != nil {
		t.Fatalf("NewCostBasisReport() returned unexpected error: %v", err)
	}
	return model.NewReportBatch([]*model.CostBasisReport{long, short}, model.RoundDollars)
}

// TestWriteCSV tests the report export.
//
// WHY: The export is what users hand to their accountant; the trailing total row must
// match the sum of the rows above it.
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, sampleBatch(t)); err != nil {
		t.Fatalf("WriteCSV() returned unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read back CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header, 2 rows and total, got %d rows", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(report.Columns, ",") {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][0] != "3.000000 ETH to BTC" || rows[1][8] != "-100" || rows[1][9] != "true" {
		t.Errorf("Unexpected first row %v", rows[1])
	}
	if rows[2][3] != "2017-01-01" || rows[2][4] != "2017-01-31" {
		t.Errorf("Unexpected dates in second row %v", rows[2])
	}

	total := rows[3]
	if total[0] != "total" || total[5] != "550" || total[6] != "500" || total[8] != "50" {
		t.Errorf("Unexpected total row %v", total)
	}
}

func TestWriteForm8949CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteForm8949CSV(&buf, sampleBatch(t)); err != nil {
		t.Fatalf("WriteForm8949CSV() returned unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read back CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Description of Property" || rows[0][5] != "Gain (or loss)" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][0] != "0.500000 BTC to USD" {
		t.Errorf("Expected short term row first, got %v", rows[1])
	}
	if rows[1][1] != "01/01/2017" || rows[1][2] != "01/31/2017" {
		t.Errorf("Unexpected dates %v", rows[1])
	}
}

func TestHumanReadable(t *testing.T) {
	out := report.HumanReadable(sampleBatch(t))

	for _, want := range []string{
		"2 transactions to be reported\n\n",
		"total gain or loss for above transactions: 50",
		"total basis for above transactions: 500",
		"total proceeds for above transactions: 550",
		"Long term.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestFlags(t *testing.T) {
	tx := testutil.Sell("1", "BTC", "10").Build()
	out := report.Flags([]model.Flag{{Kind: model.FlagBasisInformationAbsent, Transaction: tx}})
	if !strings.HasPrefix(out, "Transaction without basis information: <SELL") {
		t.Errorf("Unexpected flag output %q", out)
	}
}
