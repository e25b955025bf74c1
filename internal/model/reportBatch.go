package model

import "github.com/shopspring/decimal"

// Totals are the summed money columns of a set of cost basis reports.
type Totals struct {
	Proceeds   decimal.Decimal `json:"proceeds"`
	Basis      decimal.Decimal `json:"basis"`
	Adjustment decimal.Decimal `json:"adjustment"`
	GainOrLoss decimal.Decimal `json:"gainOrLoss"`
}

// ReportBatch groups the reports of one basis run for totals and rendering.
type ReportBatch struct {
	Reports  []*CostBasisReport
	Rounding Rounding
}

// NewReportBatch wraps reports produced with the given rounding.
func NewReportBatch(reports []*CostBasisReport, rounding Rounding) *ReportBatch {
	return &ReportBatch{Reports: reports, Rounding: rounding}
}

// Count returns the number of reports in the batch.
func (b *ReportBatch) Count() int {
	return len(b.Reports)
}

// Totals sums proceeds, basis, adjustment and gain or loss across the batch.
// Each report is already rounded, so the sums are exact.
func (b *ReportBatch) Totals() Totals {
	t := Totals{
		Proceeds:   decimal.Zero,
		Basis:      decimal.Zero,
		Adjustment: decimal.Zero,
		GainOrLoss: decimal.Zero,
	}
	for _, r := range b.Reports {
		t.Proceeds = t.Proceeds.Add(r.Proceeds)
		t.Basis = t.Basis.Add(r.Basis)
		t.Adjustment = t.Adjustment.Add(r.Adjustment)
		t.GainOrLoss = t.GainOrLoss.Add(r.GainOrLoss())
	}
	return t
}

// ShortTerm returns the sub-batch of reports held for a year or less (8949 part I).
func (b *ReportBatch) ShortTerm() *ReportBatch {
	return b.filter(func(r *CostBasisReport) bool { return !r.LongTerm })
}

// LongTerm returns the sub-batch of long-term reports (8949 part II).
func (b *ReportBatch) LongTerm() *ReportBatch {
	return b.filter(func(r *CostBasisReport) bool { return r.LongTerm })
}

func (b *ReportBatch) filter(keep func(*CostBasisReport) bool) *ReportBatch {
	out := make([]*CostBasisReport, 0, len(b.Reports))
	for _, r := range b.Reports {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewReportBatch(out, b.Rounding)
}
