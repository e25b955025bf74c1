package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// CoinbaseProName identifies the Coinbase Pro / Prime fills export.
const CoinbaseProName = "coinbasepro"

const (
	cbpProduct   = "product"
	cbpSide      = "side"
	cbpCreatedAt = "created at"
	cbpSize      = "size"
	cbpSizeUnit  = "size unit"
	cbpPrice     = "price"
	cbpFee       = "fee"
	cbpUnit      = "price/fee/total unit"
)

var coinbaseProHeaders = []string{
	"portfolio",
	"trade id",
	cbpProduct,
	cbpSide,
	cbpCreatedAt,
	cbpSize,
	cbpSizeUnit,
	cbpPrice,
	cbpFee,
	"total",
	cbpUnit,
}

// CoinbaseProParser reads Coinbase Pro fills. A fill of product BASE-QUOTE moves size BASE
// against size*price QUOTE; the fee is charged in QUOTE.
//
// A BUY on a coin-to-coin product gives up the quote coin, so it becomes a SELL of the
// quote coin that receives the base coin.
type CoinbaseProParser struct{}

// NewCoinbaseProParser creates a Coinbase Pro format parser.
func NewCoinbaseProParser() *CoinbaseProParser {
	return &CoinbaseProParser{}
}

// Name returns "coinbasepro".
func (p *CoinbaseProParser) Name() string {
	return CoinbaseProName
}

// Parse reads every fill of r.
func (p *CoinbaseProParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	rows, err := readTable(CoinbaseProName, r, coinbaseProHeaders)
	if err != nil {
		return nil, err
	}

	txs := make([]*model.Transaction, 0, len(rows))
	for _, rw := range rows {
		tx, err := coinbaseProTransaction(rw)
		if err != nil {
			return nil, rowError(CoinbaseProName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func coinbaseProTransaction(rw row) (*model.Transaction, error) {
	base, quote, ok := strings.Cut(rw.get(cbpProduct), "-")
	if !ok || base == "" || quote == "" {
		return nil, fmt.Errorf("%w: product %q is not BASE-QUOTE", apperrors.ErrMalformedRow, rw.get(cbpProduct))
	}
	if unit := rw.get(cbpSizeUnit); unit != "" && !strings.EqualFold(unit, base) {
		return nil, fmt.Errorf("%w: size unit %s does not match product %s", apperrors.ErrMalformedRow, unit, rw.get(cbpProduct))
	}

	date, err := parseTimestamp(rw.get(cbpCreatedAt))
	if err != nil {
		return nil, err
	}
	size, err := parseAmount(cbpSize, rw.get(cbpSize))
	if err != nil {
		return nil, err
	}
	price, err := parseAmount(cbpPrice, rw.get(cbpPrice))
	if err != nil {
		return nil, err
	}
	fee, err := parseOptionalAmount(cbpFee, rw.get(cbpFee))
	if err != nil {
		return nil, err
	}
	feeSymbol := rw.get(cbpUnit)
	if feeSymbol == "" {
		feeSymbol = quote
	}

	tx := model.Transaction{
		Date:      date,
		Fees:      fee.Abs(),
		FeeSymbol: feeSymbol,
		Source:    CoinbaseProName,
	}
	counter := size.Abs().Mul(price.Abs())
	switch strings.ToUpper(rw.get(cbpSide)) {
	case "BUY":
		tx.Operation = model.OperationBuy
		tx.SymbolReceived, tx.QuantityReceived = base, size.Abs()
		tx.SymbolTraded, tx.QuantityTraded = quote, counter
	case "SELL":
		tx.Operation = model.OperationSell
		tx.SymbolTraded, tx.QuantityTraded = base, size.Abs()
		tx.SymbolReceived, tx.QuantityReceived = quote, counter
	default:
		return nil, fmt.Errorf("%w: side %q", apperrors.ErrMalformedRow, rw.get(cbpSide))
	}

	out, err := model.NewTransaction(tx)
	if err != nil {
		return nil, err
	}
	return out.NormalizeCoinToCoin(), nil
}
