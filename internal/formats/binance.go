package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// BinanceName identifies the Binance trade history export.
const BinanceName = "binance"

const (
	binanceDate    = "Date"
	binanceMarket  = "Market"
	binanceType    = "Type"
	binanceAmount  = "Amount"
	binanceTotal   = "Total"
	binanceFee     = "Fee"
	binanceFeeCoin = "Fee Coin"
)

var binanceHeaders = []string{binanceDate, binanceMarket, binanceType, "Price", binanceAmount, binanceTotal, binanceFee, binanceFeeCoin}

// binanceQuotes are the quote assets Binance lists markets against, longest first so
// "BTCUSDT" is not read as BTCUSD + T.
var binanceQuotes = []string{"USDT", "BUSD", "USDC", "TUSD", "USD", "BTC", "ETH", "BNB", "XRP", "TRX", "PAX"}

// BinanceParser reads Binance trade history. A row of market BASEQUOTE moves Amount BASE
// against Total QUOTE, with the fee in Fee Coin.
//
// Most Binance markets are quoted in a coin, so most BUY rows are coin-to-coin and become
// a SELL of the quote coin.
type BinanceParser struct{}

// NewBinanceParser creates a Binance format parser.
func NewBinanceParser() *BinanceParser {
	return &BinanceParser{}
}

// Name returns "binance".
func (p *BinanceParser) Name() string {
	return BinanceName
}

// Parse reads every trade of r.
func (p *BinanceParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	rows, err := readTable(BinanceName, r, binanceHeaders)
	if err != nil {
		return nil, err
	}

	txs := make([]*model.Transaction, 0, len(rows))
	for _, rw := range rows {
		tx, err := binanceTransaction(rw)
		if err != nil {
			return nil, rowError(BinanceName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// splitMarket splits "ETHBTC" into ETH and BTC.
func splitMarket(market string) (base, quote string, ok bool) {
	market = strings.ToUpper(strings.TrimSpace(market))
	quote, found := lo.Find(binanceQuotes, func(q string) bool {
		return strings.HasSuffix(market, q) && len(market) > len(q)
	})
	if !found {
		return "", "", false
	}
	return strings.TrimSuffix(market, quote), quote, true
}

func binanceTransaction(rw row) (*model.Transaction, error) {
	base, quote, ok := splitMarket(rw.get(binanceMarket))
	if !ok {
		return nil, fmt.Errorf("%w: unknown market %q", apperrors.ErrMalformedRow, rw.get(binanceMarket))
	}
	date, err := parseTimestamp(rw.get(binanceDate))
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(binanceAmount, rw.get(binanceAmount))
	if err != nil {
		return nil, err
	}
	total, err := parseAmount(binanceTotal, rw.get(binanceTotal))
	if err != nil {
		return nil, err
	}
	fee, err := parseOptionalAmount(binanceFee, rw.get(binanceFee))
	if err != nil {
		return nil, err
	}

	tx := model.Transaction{
		Date:      date,
		Fees:      fee,
		FeeSymbol: rw.get(binanceFeeCoin),
		Source:    BinanceName,
	}
	switch strings.ToUpper(rw.get(binanceType)) {
	case "BUY":
		tx.Operation = model.OperationBuy
		tx.SymbolReceived, tx.QuantityReceived = base, amount
		tx.SymbolTraded, tx.QuantityTraded = quote, total
	case "SELL":
		tx.Operation = model.OperationSell
		tx.SymbolTraded, tx.QuantityTraded = base, amount
		tx.SymbolReceived, tx.QuantityReceived = quote, total
	default:
		return nil, fmt.Errorf("%w: type %q", apperrors.ErrMalformedRow, rw.get(binanceType))
	}

	out, err := model.NewTransaction(tx)
	if err != nil {
		return nil, err
	}
	return out.NormalizeCoinToCoin(), nil
}
