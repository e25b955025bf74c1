// Package report renders cost basis reports as CSV files and plain text summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

const dateFormat = "2006-01-02"

// Columns is the header of WriteCSV.
var Columns = []string{
	"description",
	"asset",
	"quantity",
	"date_acquired",
	"date_sold",
	"proceeds",
	"cost_basis",
	"adjustment",
	"gain_or_loss",
	"long_term",
}

// Form8949Columns is the header of WriteForm8949CSV.
var Form8949Columns = []string{
	"Description of Property",
	"Date Acquired",
	"Date Sold",
	"Proceeds",
	"Cost Basis",
	"Gain (or loss)",
}

// WriteCSV writes a header, one row per report and a trailing total row carrying the
// summed gain or loss in the gain_or_loss column.
func WriteCSV(w io.Writer, batch *model.ReportBatch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range batch.Reports {
		row := []string{
			r.Description(),
			r.Asset,
			r.Quantity.String(),
			r.DatePurchased.Format(dateFormat),
			r.DateSold.Format(dateFormat),
			r.Proceeds.String(),
			r.Basis.String(),
			r.Adjustment.String(),
			r.GainOrLoss().String(),
			strconv.FormatBool(r.LongTerm),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	totals := batch.Totals()
	total := make([]string, len(Columns))
	total[0] = "total"
	total[lo.IndexOf(Columns, "proceeds")] = totals.Proceeds.String()
	total[lo.IndexOf(Columns, "cost_basis")] = totals.Basis.String()
	total[lo.IndexOf(Columns, "adjustment")] = totals.Adjustment.String()
	total[lo.IndexOf(Columns, "gain_or_loss")] = totals.GainOrLoss.String()
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("failed to write csv total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WriteForm8949CSV writes the reports in the column layout of IRS form 8949, short term
// rows first.
func WriteForm8949CSV(w io.Writer, batch *model.ReportBatch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Form8949Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	ordered := append(batch.ShortTerm().Reports, batch.LongTerm().Reports...)
	for _, r := range ordered {
		row := []string{
			r.Description(),
			r.DatePurchased.Format("01/02/2006"),
			r.DateSold.Format("01/02/2006"),
			r.Proceeds.String(),
			r.Basis.String(),
			r.GainOrLoss().String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// HumanReadable summarises a batch as plain text.
func HumanReadable(batch *model.ReportBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d transactions to be reported\n\n", batch.Count())
	for _, r := range batch.Reports {
		fmt.Fprintf(&b, "%s\n", r)
	}

	totals := batch.Totals()
	fmt.Fprintf(&b, "\ntotal gain or loss for above transactions: %s\n", totals.GainOrLoss)
	fmt.Fprintf(&b, "\ntotal basis for above transactions: %s", totals.Basis)
	fmt.Fprintf(&b, "\ntotal proceeds for above transactions: %s", totals.Proceeds)
	return b.String()
}

// Flags summarises advisory flags, one line each.
func Flags(flags []model.Flag) string {
	lines := lo.Map(flags, func(f model.Flag, _ int) string {
		return fmt.Sprintf("%s: %s", f.Kind, f.Transaction)
	})
	return strings.Join(lines, "\n")
}
