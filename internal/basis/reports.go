package basis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// saleReports builds one report per fully consumed lot. Each lot carries its whole
// basis and the share of net proceeds matching its share of the disposed quantity.
// When the lots fall dust short of the disposal, the last one takes whatever net
// proceeds the others left.
func (m *matcher) saleReports(consumed []*model.Transaction, dustShort bool) ([]*model.CostBasisReport, error) {
	if len(consumed) == 0 {
		return nil, nil
	}
	net, err := m.netProceeds()
	if err != nil {
		return nil, err
	}

	reports := make([]*model.CostBasisReport, 0, len(consumed))
	allocated := decimal.Zero
	for i, lot := range consumed {
		if lot.SymbolReceived != m.tx.SymbolTraded {
			return nil, fmt.Errorf("%w: %s lot matched against %s disposal", apperrors.ErrInvariantViolation, lot.SymbolReceived, m.tx.SymbolTraded)
		}
		basis, err := m.lotBasis(lot)
		if err != nil {
			return nil, err
		}
		proceeds := lot.QuantityReceived.Div(m.tx.QuantityTraded).Mul(net)
		if dustShort && i == len(consumed)-1 {
			proceeds = net.Sub(allocated)
		}
		r, err := model.NewCostBasisReport(model.ReportParams{
			UserID:                m.tx.UserID,
			Asset:                 m.tx.SymbolTraded,
			SecondaryAsset:        m.secondaryAsset(),
			Quantity:              lot.QuantityReceived,
			Basis:                 basis,
			Proceeds:              proceeds,
			DatePurchased:         lot.Date,
			DateSold:              m.tx.Date,
			TriggeringTransaction: m.tx,
		}, m.rounding)
		if err != nil {
			return nil, err
		}
		allocated = allocated.Add(r.Proceeds)
		reports = append(reports, r)
	}
	return reports, nil
}

// splitReport covers the sold part of a partially consumed lot. Proceeds and fees are
// each rounded to cents before the fees are deducted.
func (m *matcher) splitReport(lot *model.Transaction, sold decimal.Decimal) (*model.CostBasisReport, error) {
	if !sold.IsPositive() || !sold.LessThan(lot.QuantityReceived) {
		return nil, fmt.Errorf("%w: selling %s of a %s %s lot", apperrors.ErrInvariantViolation, sold, lot.QuantityReceived, lot.SymbolReceived)
	}
	if sold.Sub(m.tx.QuantityTraded).GreaterThan(SplitTolerance) {
		return nil, fmt.Errorf("%w: split sells %s but the disposal is only %s", apperrors.ErrInvariantViolation, sold, m.tx.QuantityTraded)
	}

	lotBasis, err := m.lotBasis(lot)
	if err != nil {
		return nil, err
	}
	gross, err := m.grossProceeds()
	if err != nil {
		return nil, err
	}
	fees, err := m.feesInFiat()
	if err != nil {
		return nil, err
	}

	fractionOfLot := sold.Div(lot.QuantityReceived)
	fractionOfSale := sold.Div(m.tx.QuantityTraded)
	proceeds := fractionOfSale.Mul(gross).RoundBank(2).Sub(fractionOfSale.Mul(fees).RoundBank(2))

	return model.NewCostBasisReport(model.ReportParams{
		UserID:                m.tx.UserID,
		Asset:                 m.tx.SymbolTraded,
		SecondaryAsset:        m.secondaryAsset(),
		Quantity:              sold,
		Basis:                 fractionOfLot.Mul(lotBasis),
		Proceeds:              proceeds,
		DatePurchased:         lot.Date,
		DateSold:              m.tx.Date,
		TriggeringTransaction: m.tx,
	}, m.rounding)
}

// basisAbsentReport reports a disposal that could not be matched to any lot: basis zero,
// acquired on the day it was sold.
func (m *matcher) basisAbsentReport() (*model.CostBasisReport, error) {
	net, err := m.netProceeds()
	if err != nil {
		return nil, err
	}
	return model.NewCostBasisReport(model.ReportParams{
		UserID:                m.tx.UserID,
		Asset:                 m.tx.SymbolTraded,
		SecondaryAsset:        m.secondaryAsset(),
		Quantity:              m.tx.QuantityTraded,
		Basis:                 decimal.Zero,
		Proceeds:              net,
		DatePurchased:         m.tx.Date,
		DateSold:              m.tx.Date,
		TriggeringTransaction: m.tx,
	}, m.rounding)
}

// tradeInput is the lot a coin-to-coin trade adds for the received asset. Its cost is
// the fiat value of what was given up. Buy-side fees of such trades are not modelled.
func (m *matcher) tradeInput() (*model.Transaction, error) {
	cost, err := m.valueAt(m.tx.SymbolTraded, m.tx.QuantityTraded, m.tx.Date)
	if err != nil {
		return nil, err
	}
	return &model.Transaction{
		UserID:                m.tx.UserID,
		Operation:             model.OperationTradeInput,
		Date:                  m.tx.Date,
		SymbolReceived:        m.tx.SymbolReceived,
		QuantityReceived:      m.tx.QuantityReceived,
		SymbolTraded:          model.FiatSymbol,
		QuantityTraded:        cost,
		Fees:                  decimal.Zero,
		FeeSymbol:             model.FiatSymbol,
		Source:                m.tx.Source,
		TriggeringTransaction: m.tx,
	}, nil
}

// splitRemainder is the unsold part of lot once sold units of it are gone. It keeps the
// lot's date so its holding period still starts at the original acquisition. Cost and
// fees are what the sold part did not take, so the two parts always add up to the lot.
func splitRemainder(lot *model.Transaction, sold decimal.Decimal, trigger *model.Transaction) (*model.Transaction, error) {
	if !sold.LessThan(lot.QuantityReceived) {
		return nil, fmt.Errorf("%w: nothing left of a %s %s lot after selling %s", apperrors.ErrInvariantViolation, lot.QuantityReceived, lot.SymbolReceived, sold)
	}
	fractionSold := sold.Div(lot.QuantityReceived)
	return &model.Transaction{
		UserID:                lot.UserID,
		Operation:             model.OperationSplit,
		Date:                  lot.Date,
		SymbolReceived:        lot.SymbolReceived,
		QuantityReceived:      lot.QuantityReceived.Sub(sold),
		SymbolTraded:          lot.SymbolTraded,
		QuantityTraded:        lot.QuantityTraded.Sub(fractionSold.Mul(lot.QuantityTraded)),
		Fees:                  lot.Fees.Sub(fractionSold.Mul(lot.Fees)),
		FeeSymbol:             lot.FeeSymbol,
		Source:                lot.Source,
		TriggeringTransaction: trigger,
	}, nil
}
