package formats

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// BitMEXName identifies the BitMEX wallet history export.
const BitMEXName = "bitmex"

const (
	bitmexTime    = "transactTime"
	bitmexType    = "transactType"
	bitmexAmount  = "amount"
	bitmexAddress = "address"
	bitmexStatus  = "status"

	bitmexRealisedPNL = "RealisedPNL"
)

var bitmexHeaders = []string{bitmexTime, bitmexType, bitmexAmount, bitmexAddress, bitmexStatus}

// bitmexUnit converts wallet amounts, quoted in millionths of a bitcoin, to BTC.
var bitmexUnit = decimal.New(1, 6)

// BitMEXParser reads BitMEX wallet history. Contracts settle in BTC and never enter the
// pool; only their realised PnL rows are tax events.
//
// A profit is BTC received for nothing: a SELL of zero units of the contract, named
// "BITMEX <address>", whose BTC enters the pool at zero cost. A loss is BTC given up for
// nothing: a SELL of that BTC for zero fiat.
type BitMEXParser struct{}

// NewBitMEXParser creates a BitMEX format parser.
func NewBitMEXParser() *BitMEXParser {
	return &BitMEXParser{}
}

// Name returns "bitmex".
func (p *BitMEXParser) Name() string {
	return BitMEXName
}

// Parse reads the realised PnL rows of r. Deposits, withdrawals and transfers are skipped.
func (p *BitMEXParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	rows, err := readTable(BitMEXName, r, bitmexHeaders)
	if err != nil {
		return nil, err
	}

	var txs []*model.Transaction
	for _, rw := range rows {
		if rw.get(bitmexType) != bitmexRealisedPNL {
			continue
		}
		tx, err := bitmexTransaction(rw)
		if err != nil {
			return nil, rowError(BitMEXName, rw, err)
		}
		if tx != nil {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func bitmexTransaction(rw row) (*model.Transaction, error) {
	date, err := parseTimestamp(rw.get(bitmexTime))
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(bitmexAmount, rw.get(bitmexAmount))
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, nil
	}
	btc := amount.Abs().Div(bitmexUnit)

	tx := model.Transaction{
		Operation: model.OperationSell,
		Date:      date,
		Source:    BitMEXName,
	}
	if amount.IsPositive() {
		tx.SymbolReceived, tx.QuantityReceived = "BTC", btc
		tx.SymbolTraded = strings.TrimSpace("BITMEX " + rw.get(bitmexAddress))
	} else {
		tx.SymbolTraded, tx.QuantityTraded = "BTC", btc
		tx.SymbolReceived = model.FiatSymbol
	}
	return model.NewTransaction(tx)
}
