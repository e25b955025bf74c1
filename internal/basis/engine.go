// Package basis matches disposals against pooled lots and turns the matches into
// cost basis reports.
package basis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
)

// SplitTolerance is the excess, in units of the disposed asset, above which the last
// matched lot is split. Smaller excesses, and shortfalls no larger than it once the pool
// runs dry, count as an exact match.
var SplitTolerance = decimal.New(1, -5)

// Lots is the read side of a coin pool.
type Lots interface {
	Get(symbol string) []*model.Transaction
}

// ProcessOne computes what tx does to the pool as it stands immediately before tx.
// It never mutates pool; the caller applies the returned diff.
//
// Simple inputs are added to the pool as they are. Disposals consume lots from index
// 0 upward, splitting the last one if it is only partly sold. SELL and SPENDING produce
// reports; GIFT_SENT removes lots silently. A coin-to-coin disposal also adds a
// TRADE_INPUT lot for the received asset.
//
// Every fiat valuation uses the day's high from oracle. A missing price aborts the
// transaction with an error wrapping apperrors.ErrNoPriceData.
func ProcessOne(ctx context.Context, tx *model.Transaction, pool Lots, oracle ohlc.Provider, rounding model.Rounding) ([]*model.CostBasisReport, *coinpool.Diff, []model.Flag, error) {
	diff := coinpool.NewDiff()

	if tx.IsSimpleInput() {
		if err := diff.Add(tx.SymbolReceived, tx); err != nil {
			return nil, nil, nil, err
		}
		return nil, diff, nil, nil
	}
	if tx.Operation == model.OperationSplit {
		return nil, nil, nil, fmt.Errorf("%w: %s", apperrors.ErrSyntheticInput, tx)
	}

	m := &matcher{ctx: ctx, tx: tx, oracle: oracle, rounding: rounding}
	lots := pool.Get(tx.SymbolTraded)

	var flags []model.Flag
	amount := decimal.Zero
	index := -1
	basisAbsent, dustShort := false, false
	for amount.LessThan(tx.QuantityTraded) {
		if index+1 >= len(lots) {
			if index >= 0 && tx.QuantityTraded.Sub(amount).LessThanOrEqual(SplitTolerance) {
				// Every pooled lot is sold; the shortfall is rounding dust.
				dustShort = true
				break
			}
			// Sold more than was ever pooled: the whole disposal gets a zero basis.
			flags = append(flags, model.Flag{Kind: model.FlagBasisInformationAbsent, Transaction: tx})
			basisAbsent = true
			amount = tx.QuantityTraded
			break
		}
		index++
		amount = amount.Add(lots[index].QuantityReceived)
	}

	var reports []*model.CostBasisReport
	excess := amount.Sub(tx.QuantityTraded)
	needsSplit := !basisAbsent && excess.GreaterThan(SplitTolerance)

	var splitReport *model.CostBasisReport
	if needsSplit {
		lot := lots[index]
		sold := lot.QuantityReceived.Sub(excess)
		if tx.IsTaxableOutput() {
			r, err := m.splitReport(lot, sold)
			if err != nil {
				return nil, nil, nil, err
			}
			splitReport = r
		}
		remainder, err := splitRemainder(lot, sold, tx)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := diff.Add(remainder.SymbolReceived, remainder); err != nil {
			return nil, nil, nil, err
		}
	}

	// Lots 0..index are gone. With a split, the lot at index lives on as the remainder.
	diff.Remove(tx.SymbolTraded, index)
	consumed := index
	if !needsSplit {
		consumed = index + 1
	}

	if tx.IsTaxableOutput() {
		if basisAbsent {
			r, err := m.basisAbsentReport()
			if err != nil {
				return nil, nil, nil, err
			}
			reports = append(reports, r)
		} else {
			rs, err := m.saleReports(lots[:consumed], dustShort)
			if err != nil {
				return nil, nil, nil, err
			}
			reports = append(reports, rs...)
			if splitReport != nil {
				reports = append(reports, splitReport)
			}
		}
	}

	if tx.IsCoinToCoin() {
		input, err := m.tradeInput()
		if err != nil {
			return nil, nil, nil, err
		}
		if err := diff.Add(input.SymbolReceived, input); err != nil {
			return nil, nil, nil, err
		}
	}

	return reports, diff, flags, nil
}

// matcher carries the state shared by the report builders of one disposal.
type matcher struct {
	ctx      context.Context
	tx       *model.Transaction
	oracle   ohlc.Provider
	rounding model.Rounding
}

// valueAt converts qty of symbol to fiat at the daily high on date. Fiat amounts, zero
// quantities and legs without a symbol need no lookup.
func (m *matcher) valueAt(symbol string, qty decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	if symbol == "" || model.IsFiat(symbol) || qty.IsZero() {
		return qty, nil
	}
	d, err := m.oracle.Get(m.ctx, symbol, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to value %s %s on %s: %w", qty, symbol, ohlc.DayKey(date), err)
	}
	return d.High.Mul(qty), nil
}

// grossProceeds is the fiat value of everything the disposal received.
func (m *matcher) grossProceeds() (decimal.Decimal, error) {
	return m.valueAt(m.tx.SymbolReceived, m.tx.QuantityReceived, m.tx.Date)
}

// feesInFiat converts the disposal's fee at the high of the fee's own currency on the
// disposal date, not at the price of the disposed asset.
func (m *matcher) feesInFiat() (decimal.Decimal, error) {
	return m.valueAt(m.tx.FeeSymbol, m.tx.Fees, m.tx.Date)
}

// netProceeds is gross proceeds minus fees, both in fiat.
func (m *matcher) netProceeds() (decimal.Decimal, error) {
	gross, err := m.grossProceeds()
	if err != nil {
		return decimal.Zero, err
	}
	fees, err := m.feesInFiat()
	if err != nil {
		return decimal.Zero, err
	}
	return gross.Sub(fees), nil
}

// lotBasis is what a lot cost, acquisition fees included, valued on its own date.
func (m *matcher) lotBasis(lot *model.Transaction) (decimal.Decimal, error) {
	cost, err := m.valueAt(lot.SymbolTraded, lot.QuantityTraded, lot.Date)
	if err != nil {
		return decimal.Zero, err
	}
	fees, err := m.valueAt(lot.FeeSymbol, lot.Fees, lot.Date)
	if err != nil {
		return decimal.Zero, err
	}
	return cost.Add(fees), nil
}

// secondaryAsset names the received asset of a disposal that was not paid in fiat.
func (m *matcher) secondaryAsset() string {
	if model.IsFiat(m.tx.SymbolReceived) {
		return ""
	}
	return m.tx.SymbolReceived
}
