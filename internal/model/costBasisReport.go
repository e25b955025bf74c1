package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// FlagBasisInformationAbsent marks a disposal that sold more than the pool held.
// The disposal is reported with a basis of zero.
const FlagBasisInformationAbsent = "Transaction without basis information"

// Flag is an advisory notice raised while processing a transaction. It is not an error.
type Flag struct {
	Kind        string       `json:"kind"`
	Transaction *Transaction `json:"transaction"`
}

// Rounding is the granularity basis and proceeds are rounded to.
type Rounding int

const (
	// RoundDollars rounds to whole currency units, as form 8949 allows.
	RoundDollars Rounding = iota
	RoundCents
)

// ParseRounding accepts "dollars" (or empty) and "cents".
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dollars", "dollar":
		return RoundDollars, nil
	case "cents", "cent":
		return RoundCents, nil
	}
	return RoundDollars, fmt.Errorf("%w: %q", apperrors.ErrInvalidRounding, s)
}

func (r Rounding) String() string {
	if r == RoundCents {
		return "cents"
	}
	return "dollars"
}

// Round applies banker's rounding at the configured granularity.
func (r Rounding) Round(d decimal.Decimal) decimal.Decimal {
	if r == RoundCents {
		return d.RoundBank(2)
	}
	return d.RoundBank(0)
}

// longTermThreshold is the holding period a disposal must exceed to be long term.
const longTermThreshold = 364 * 24 * time.Hour

// CostBasisReport is one row of form 8949: a single recognized disposal, or the sold
// portion of a split lot.
type CostBasisReport struct {
	ID             string          `json:"id,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Asset          string          `json:"asset"`
	SecondaryAsset string          `json:"secondaryAsset,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Basis          decimal.Decimal `json:"basis"`
	Proceeds       decimal.Decimal `json:"proceeds"`
	Adjustment     decimal.Decimal `json:"adjustment"`
	DatePurchased  time.Time       `json:"datePurchased"`
	DateSold       time.Time       `json:"dateSold"`
	LongTerm       bool            `json:"longTerm"`
	Rounding       Rounding        `json:"-"`

	TriggeringTransaction *Transaction `json:"-"`
}

// ReportParams holds the unrounded inputs of a CostBasisReport.
type ReportParams struct {
	UserID                string
	Asset                 string
	SecondaryAsset        string
	Quantity              decimal.Decimal
	Basis                 decimal.Decimal
	Proceeds              decimal.Decimal
	DatePurchased         time.Time
	DateSold              time.Time
	TriggeringTransaction *Transaction
}

// NewCostBasisReport rounds basis and proceeds once and derives the holding period.
// Negative basis or proceeds are rejected.
func NewCostBasisReport(p ReportParams, rounding Rounding) (*CostBasisReport, error) {
	if p.Basis.IsNegative() || p.Proceeds.IsNegative() {
		return nil, fmt.Errorf("%w: basis %s and proceeds %s must both be non-negative, asset is %s",
			apperrors.ErrNegativeAmount, p.Basis, p.Proceeds, p.Asset)
	}
	if p.Asset == "" {
		return nil, fmt.Errorf("%w: asset", apperrors.ErrMissingRequiredField)
	}
	return &CostBasisReport{
		UserID:                p.UserID,
		Asset:                 p.Asset,
		SecondaryAsset:        p.SecondaryAsset,
		Quantity:              p.Quantity,
		Basis:                 rounding.Round(p.Basis),
		Proceeds:              rounding.Round(p.Proceeds),
		Adjustment:            decimal.Zero,
		DatePurchased:         p.DatePurchased,
		DateSold:              p.DateSold,
		LongTerm:              IsLongTerm(p.DatePurchased, p.DateSold),
		Rounding:              rounding,
		TriggeringTransaction: p.TriggeringTransaction,
	}, nil
}

// IsLongTerm reports whether an asset held from purchased to sold is a long-term holding.
func IsLongTerm(purchased, sold time.Time) bool {
	return sold.Sub(purchased) > longTermThreshold
}

// GainOrLoss is proceeds minus basis at the report's rounding.
func (r *CostBasisReport) GainOrLoss() decimal.Decimal {
	return r.Rounding.Round(r.Proceeds.Sub(r.Basis))
}

// Description is the form 8949 "description of property", e.g. "0.060000 BTC to USD".
func (r *CostBasisReport) Description() string {
	to := FiatSymbol
	if r.SecondaryAsset != "" {
		to = r.SecondaryAsset
	}
	return fmt.Sprintf("%s %s to %s", r.Quantity.StringFixed(6), r.Asset, to)
}

func (r *CostBasisReport) String() string {
	exchange := "Unknown"
	if r.TriggeringTransaction != nil && r.TriggeringTransaction.Source != "" {
		exchange = r.TriggeringTransaction.Source
	}
	longTerm := ""
	if r.LongTerm {
		longTerm = " Long term."
	}
	return fmt.Sprintf("<CostBasisReport: Sold %s %s on %s for $%s. Exchange: %s. Profit: $%s.%s>",
		r.Quantity, r.Asset, r.DateSold.Format("2006-01-02"), r.Proceeds, exchange, r.GainOrLoss(), longTerm)
}
