package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// AdhocName identifies the hand-written format for events no exchange reports: mining,
// spending, gifts and one-off trades.
const AdhocName = "adhoc"

const (
	adhocType             = "Type"
	adhocTimestamp        = "Timestamp"
	adhocReceivedCurrency = "ReceivedCurrency"
	adhocReceivedAmount   = "ReceivedAmount"
	adhocTradedCurrency   = "TradedCurrency"
	adhocTradedAmount     = "TradedAmount"
	adhocFee              = "Fee"
	adhocFeeCurrency      = "FeeCurrency"
)

var adhocHeaders = []string{
	adhocType,
	adhocTimestamp,
	adhocReceivedCurrency,
	adhocReceivedAmount,
	adhocTradedCurrency,
	adhocTradedAmount,
	adhocFee,
	adhocFeeCurrency,
}

// adhocTypes maps the Type column, with case, spaces, dashes and underscores ignored.
var adhocTypes = map[string]model.Operation{
	"BUY":          model.OperationBuy,
	"SELL":         model.OperationSell,
	"MINING":       model.OperationMining,
	"SPENDING":     model.OperationSpending,
	"SPEND":        model.OperationSpending,
	"GIFTRECEIVED": model.OperationGiftReceived,
	"GIFTSENT":     model.OperationGiftSent,
}

// AdhocParser reads the adhoc CSV format. Rows of an unknown Type are skipped.
type AdhocParser struct{}

// NewAdhocParser creates an adhoc format parser.
func NewAdhocParser() *AdhocParser {
	return &AdhocParser{}
}

// Name returns "adhoc".
func (p *AdhocParser) Name() string {
	return AdhocName
}

// Parse reads every supported row of r.
func (p *AdhocParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	rows, err := readTable(AdhocName, r, adhocHeaders)
	if err != nil {
		return nil, err
	}

	var txs []*model.Transaction
	for _, rw := range rows {
		op, ok := adhocTypes[normalizeType(rw.get(adhocType))]
		if !ok {
			continue
		}
		tx, err := adhocTransaction(op, rw)
		if err != nil {
			return nil, rowError(AdhocName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func normalizeType(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToUpper(s))
}

func adhocTransaction(op model.Operation, rw row) (*model.Transaction, error) {
	date, err := parseTimestamp(rw.get(adhocTimestamp))
	if err != nil {
		return nil, err
	}
	tx := model.Transaction{
		Operation: op,
		Date:      date,
		FeeSymbol: model.FiatSymbol,
		Source:    AdhocName,
	}

	switch op {
	case model.OperationMining, model.OperationGiftReceived:
		// TradedAmount, when present, is the fiat value of what was received.
		tx.SymbolReceived = rw.get(adhocReceivedCurrency)
		if tx.QuantityReceived, err = parseAmount(adhocReceivedAmount, rw.get(adhocReceivedAmount)); err != nil {
			return nil, err
		}
		tx.SymbolTraded = model.FiatSymbol
		if tx.QuantityTraded, err = parseUSD(adhocTradedAmount, rw.get(adhocTradedAmount)); err != nil {
			return nil, err
		}

	case model.OperationGiftSent:
		tx.SymbolTraded = rw.get(adhocTradedCurrency)
		if tx.QuantityTraded, err = parseAmount(adhocTradedAmount, rw.get(adhocTradedAmount)); err != nil {
			return nil, err
		}
		tx.SymbolReceived = model.FiatSymbol
		tx.QuantityReceived = decimal.Zero

	case model.OperationSpending:
		// ReceivedAmount, when present, is the fiat value of what was bought.
		tx.SymbolTraded = rw.get(adhocTradedCurrency)
		if tx.QuantityTraded, err = parseAmount(adhocTradedAmount, rw.get(adhocTradedAmount)); err != nil {
			return nil, err
		}
		tx.SymbolReceived = model.FiatSymbol
		if tx.QuantityReceived, err = parseUSD(adhocReceivedAmount, rw.get(adhocReceivedAmount)); err != nil {
			return nil, err
		}
		if err := adhocFees(&tx, rw); err != nil {
			return nil, err
		}

	case model.OperationBuy, model.OperationSell:
		tx.SymbolReceived = rw.get(adhocReceivedCurrency)
		tx.SymbolTraded = rw.get(adhocTradedCurrency)
		if op == model.OperationBuy && tx.SymbolTraded == "" {
			tx.SymbolTraded = model.FiatSymbol
		}
		if op == model.OperationSell && tx.SymbolReceived == "" {
			tx.SymbolReceived = model.FiatSymbol
		}
		if tx.QuantityReceived, err = parseLeg(tx.SymbolReceived, adhocReceivedAmount, rw.get(adhocReceivedAmount)); err != nil {
			return nil, err
		}
		if tx.QuantityTraded, err = parseLeg(tx.SymbolTraded, adhocTradedAmount, rw.get(adhocTradedAmount)); err != nil {
			return nil, err
		}
		if err := adhocFees(&tx, rw); err != nil {
			return nil, err
		}
	}

	if tx.SymbolReceived == "" || tx.SymbolTraded == "" {
		return nil, fmt.Errorf("%w: %s row needs both currencies", apperrors.ErrMissingRequiredField, op)
	}
	out, err := model.NewTransaction(tx)
	if err != nil {
		return nil, err
	}
	return out.NormalizeCoinToCoin(), nil
}

// parseLeg reads a fiat leg as a dollar string and a coin leg as a plain number.
func parseLeg(symbol, column, s string) (decimal.Decimal, error) {
	if model.IsFiat(symbol) {
		return parseUSD(column, s)
	}
	return parseAmount(column, s)
}

// adhocFees reads Fee and FeeCurrency. A fee without a currency is in fiat.
func adhocFees(tx *model.Transaction, rw row) error {
	fee, err := parseOptionalAmount(adhocFee, rw.get(adhocFee))
	if err != nil {
		return err
	}
	tx.Fees = fee
	if c := rw.get(adhocFeeCurrency); c != "" && !fee.IsZero() {
		tx.FeeSymbol = c
	}
	return nil
}
