package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// CoinbaseTTRName identifies the Coinbase tax transactions report.
const CoinbaseTTRName = "coinbasettr"

const (
	ttrTimestamp = "Timestamp"
	ttrType      = "Transaction Type"
	ttrAsset     = "Asset"
	ttrQuantity  = "Quantity Transacted"
	ttrSpot      = "USD Spot Price at Transaction"
)

var coinbaseTTRHeaders = []string{ttrTimestamp, ttrType, ttrAsset, ttrQuantity, ttrSpot}

// ttrTotalMarkers find the fee-inclusive total column, which Coinbase has renamed
// between report versions.
var ttrTotalMarkers = []string{"total (inclusive of", "amount transacted (inclusive of"}

// CoinbaseTTRParser reads the Coinbase tax transactions report. The report opens with a
// disclaimer naming Coinbase and a few lines of account details before its header.
//
// The report has no fee column. The fee is the gap between the fee-inclusive total and
// spot price times quantity, and is taken as zero when rounding makes it negative.
type CoinbaseTTRParser struct{}

// NewCoinbaseTTRParser creates a Coinbase tax transactions report parser.
func NewCoinbaseTTRParser() *CoinbaseTTRParser {
	return &CoinbaseTTRParser{}
}

// Name returns "coinbasettr".
func (p *CoinbaseTTRParser) Name() string {
	return CoinbaseTTRName
}

// Parse reads the Buy and Sell rows of r. Sends, receives and rewards are skipped.
func (p *CoinbaseTTRParser) Parse(r io.Reader) ([]*model.Transaction, error) {
	recs, err := readRecords(CoinbaseTTRName, r)
	if err != nil {
		return nil, err
	}
	if len(recs[0]) == 0 || !strings.Contains(recs[0][0], "Coinbase") {
		return nil, fmt.Errorf("%w: %s: no Coinbase disclaimer", apperrors.ErrUnrecognizedFormat, CoinbaseTTRName)
	}

	headerAt, found := findHeader(recs, ttrTimestamp)
	if !found {
		return nil, fmt.Errorf("%w: %s: no header line", apperrors.ErrUnrecognizedFormat, CoinbaseTTRName)
	}
	header := cleanHeader(recs[headerAt])
	if err := missingHeader(CoinbaseTTRName, header, coinbaseTTRHeaders); err != nil {
		return nil, err
	}
	totalColumn, ok := lo.Find(header, func(h string) bool {
		return lo.SomeBy(ttrTotalMarkers, func(marker string) bool {
			return strings.Contains(strings.ToLower(h), marker)
		})
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s: no fee-inclusive total column", apperrors.ErrUnrecognizedFormat, CoinbaseTTRName)
	}

	var txs []*model.Transaction
	for _, rw := range rowsAfter(header, recs, headerAt) {
		kind := strings.ToLower(rw.get(ttrType))
		if kind != "buy" && kind != "sell" {
			continue
		}
		tx, err := coinbaseTTRTransaction(kind, totalColumn, rw)
		if err != nil {
			return nil, rowError(CoinbaseTTRName, rw, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func coinbaseTTRTransaction(kind, totalColumn string, rw row) (*model.Transaction, error) {
	date, err := parseTimestamp(rw.get(ttrTimestamp))
	if err != nil {
		return nil, err
	}
	quantity, err := parseAmount(ttrQuantity, rw.get(ttrQuantity))
	if err != nil {
		return nil, err
	}
	spot, err := parseUSD(ttrSpot, rw.get(ttrSpot))
	if err != nil {
		return nil, err
	}
	total, err := parseUSD(totalColumn, rw.get(totalColumn))
	if err != nil {
		return nil, err
	}

	quantity = quantity.Abs()
	atSpot := spot.Mul(quantity)
	tx := model.Transaction{
		Date:      date,
		FeeSymbol: model.FiatSymbol,
		Source:    CoinbaseTTRName,
	}
	if kind == "buy" {
		tx.Fees = decimal.Max(total.Sub(atSpot), decimal.Zero)
		tx.Operation = model.OperationBuy
		tx.SymbolReceived, tx.QuantityReceived = rw.get(ttrAsset), quantity
		tx.SymbolTraded, tx.QuantityTraded = model.FiatSymbol, total.Sub(tx.Fees)
	} else {
		tx.Fees = decimal.Max(atSpot.Sub(total), decimal.Zero)
		tx.Operation = model.OperationSell
		tx.SymbolTraded, tx.QuantityTraded = rw.get(ttrAsset), quantity
		tx.SymbolReceived, tx.QuantityReceived = model.FiatSymbol, total.Add(tx.Fees)
	}
	return model.NewTransaction(tx)
}
