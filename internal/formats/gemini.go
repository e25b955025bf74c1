package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// GeminiName identifies the Gemini transaction history export.
const GeminiName = "gemini"

const (
	geminiType      = "Type"
	geminiDate      = "Date"
	geminiTime      = "Time (UTC)"
	geminiSymbol    = "Symbol"
	geminiUSDAmount = "USD Amount USD"
	geminiFee       = "Fee (USD) USD"
)

var geminiHeaders = []string{geminiType, geminiDate, geminiTime, geminiSymbol, "BTC Amount BTC", geminiUSDAmount, geminiFee}

// GeminiCurrencies are the coins a Gemini export may carry an "<C> Amount <C>" column for.
var GeminiCurrencies = []string{"BCH", "BTC", "ZEC", "ETH", "LTC"}

// GeminiParser reads Gemini's transaction history CSV. Only Buy and Sell rows are tax
// events; transfers, credits and debits are skipped.
type GeminiParser struct{}

// NewGeminiParser creates a Gemini format parser.
func NewGeminiParser() *GeminiParser {
	return &GeminiParser{}
}

// Name returns "gemini".
func (p *GeminiParser) Name() string {
	return GeminiName
}

// Parse reads the Buy and Sell rows of r.
func (p *GeminiParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	rows, err := readTable(GeminiName, r, geminiHeaders)
	if err != nil {
		return nil, err
	}

	var txs []*model.Transaction
	for _, rw := range rows {
		kind := rw.get(geminiType)
		if kind != "Buy" && kind != "Sell" {
			continue
		}
		tx, err := geminiTransaction(kind, rw)
		if err != nil {
			return nil, rowError(GeminiName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func geminiTransaction(kind string, rw row) (*model.Transaction, error) {
	date, err := parseTimestamp(rw.get(geminiDate) + " " + rw.get(geminiTime))
	if err != nil {
		return nil, err
	}

	currency := strings.TrimSuffix(strings.ToUpper(rw.get(geminiSymbol)), model.FiatSymbol)
	if !lo.Contains(GeminiCurrencies, currency) {
		return nil, fmt.Errorf("%w: unsupported gemini symbol %q", apperrors.ErrMalformedRow, rw.get(geminiSymbol))
	}

	// "(0.5 BTC)" or "0.5 BTC"
	amountColumn := fmt.Sprintf("%s Amount %s", currency, currency)
	fields := strings.Fields(strings.Trim(rw.get(amountColumn), "()"))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", apperrors.ErrMalformedRow, amountColumn)
	}
	quantity, err := parseAmount(amountColumn, fields[0])
	if err != nil {
		return nil, err
	}
	quantity = quantity.Abs()

	usd, err := parseUSD(geminiUSDAmount, rw.get(geminiUSDAmount))
	if err != nil {
		return nil, err
	}
	fee, err := parseUSD(geminiFee, rw.get(geminiFee))
	if err != nil {
		return nil, err
	}

	tx := model.Transaction{
		Date:      date,
		Fees:      fee,
		FeeSymbol: model.FiatSymbol,
		Source:    GeminiName,
	}
	if kind == "Buy" {
		tx.Operation = model.OperationBuy
		tx.SymbolReceived, tx.QuantityReceived = currency, quantity
		tx.SymbolTraded, tx.QuantityTraded = model.FiatSymbol, usd
	} else {
		tx.Operation = model.OperationSell
		tx.SymbolTraded, tx.QuantityTraded = currency, quantity
		tx.SymbolReceived, tx.QuantityReceived = model.FiatSymbol, usd
	}
	return model.NewTransaction(tx)
}
