package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// CoinbaseName identifies the Coinbase transaction history export.
const CoinbaseName = "coinbase"

const (
	cbTimestamp     = "Timestamp"
	cbAmount        = "Amount"
	cbCurrency      = "Currency"
	cbTransferTotal = "Transfer Total"
	cbTransferFee   = "Transfer Fee"
	cbCoinbaseID    = "Coinbase ID"
	cbBitcoinHash   = "Bitcoin Hash"
)

var coinbaseHeaders = []string{cbTimestamp, cbAmount, cbCurrency, cbTransferTotal, cbTransferFee}

// CoinbaseParser reads the Coinbase account history export. Only rows with a Transfer
// Total moved fiat; the rest are sends and receives between wallets and are skipped.
//
// Transfer Total is what left or reached the bank, fees included: a buy cost
// Total - Fee plus the fee, a sale fetched Total + Fee less the fee.
type CoinbaseParser struct{}

// NewCoinbaseParser creates a Coinbase format parser.
func NewCoinbaseParser() *CoinbaseParser {
	return &CoinbaseParser{}
}

// Name returns "coinbase".
func (p *CoinbaseParser) Name() string {
	return CoinbaseName
}

// Parse reads the fiat transfers of r.
func (p *CoinbaseParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	recs, err := readRecords(CoinbaseName, r)
	if err != nil {
		return nil, err
	}
	// A few lines of account details precede the header.
	headerAt, found := findHeader(recs, cbTimestamp)
	if !found {
		return nil, fmt.Errorf("%w: %s: no header line", apperrors.ErrUnrecognizedFormat, CoinbaseName)
	}

	// The last two columns are named after their links, e.g. "Coinbase ID (visit
	// https://www.coinbase.com/transactions/[ID] in your browser)".
	header := cleanHeader(recs[headerAt])
	if len(header) < 2 || !strings.Contains(header[len(header)-2], "Coinbase") {
		return nil, fmt.Errorf("%w: %s: no Coinbase ID column", apperrors.ErrUnrecognizedFormat, CoinbaseName)
	}
	header[len(header)-2], header[len(header)-1] = cbCoinbaseID, cbBitcoinHash
	if err := missingHeader(CoinbaseName, header, coinbaseHeaders); err != nil {
		return nil, err
	}

	var txs []*model.Transaction
	for _, rw := range rowsAfter(header, recs, headerAt) {
		if rw.get(cbTransferTotal) == "" {
			continue
		}
		tx, err := coinbaseTransaction(rw)
		if err != nil {
			return nil, rowError(CoinbaseName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func coinbaseTransaction(rw row) (*model.Transaction, error) {
	date, err := parseTimestamp(rw.get(cbTimestamp))
	if err != nil {
		return nil, err
	}
	quantity, err := parseAmount(cbAmount, rw.get(cbAmount))
	if err != nil {
		return nil, err
	}
	total, err := parseUSD(cbTransferTotal, rw.get(cbTransferTotal))
	if err != nil {
		return nil, err
	}
	fee, err := parseUSD(cbTransferFee, rw.get(cbTransferFee))
	if err != nil {
		return nil, err
	}

	tx := model.Transaction{
		Date:      date,
		Fees:      fee,
		FeeSymbol: model.FiatSymbol,
		Source:    CoinbaseName,
	}
	currency := rw.get(cbCurrency)
	if quantity.IsNegative() {
		tx.Operation = model.OperationSell
		tx.SymbolTraded, tx.QuantityTraded = currency, quantity.Abs()
		tx.SymbolReceived, tx.QuantityReceived = model.FiatSymbol, total.Add(fee)
	} else {
		if fee.GreaterThan(total) {
			return nil, fmt.Errorf("%w: fee %s exceeds transfer total %s", apperrors.ErrMalformedRow, fee, total)
		}
		tx.Operation = model.OperationBuy
		tx.SymbolReceived, tx.QuantityReceived = currency, quantity
		tx.SymbolTraded, tx.QuantityTraded = model.FiatSymbol, total.Sub(fee)
	}
	if currency == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingRequiredField, cbCurrency)
	}
	return model.NewTransaction(tx)
}
