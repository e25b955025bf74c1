package coinpool

import (
	"fmt"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// Addition is a lot to insert under Symbol.
type Addition struct {
	Symbol      string
	Transaction *model.Transaction
}

// Removal drops every lot of Symbol at or before Index.
type Removal struct {
	Symbol string
	Index  int
}

// Diff is the change one processed transaction makes to a pool.
// It is built by the matching engine and applied exactly once.
type Diff struct {
	Additions []Addition
	Removals  []Removal
}

// NewDiff returns an empty Diff.
func NewDiff() *Diff {
	return &Diff{}
}

// Add schedules tx for insertion under symbol. The lot must have been received in symbol.
func (d *Diff) Add(symbol string, tx *model.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: nil lot", apperrors.ErrMissingRequiredField)
	}
	if symbol != tx.SymbolReceived {
		return fmt.Errorf("%w: adding %s lot to %s pool", apperrors.ErrSymbolMismatch, tx.SymbolReceived, symbol)
	}
	d.Additions = append(d.Additions, Addition{Symbol: symbol, Transaction: tx})
	return nil
}

// Remove schedules removal of lots 0..index of symbol. A negative index removes nothing.
func (d *Diff) Remove(symbol string, index int) {
	if index < 0 {
		return
	}
	d.Removals = append(d.Removals, Removal{Symbol: symbol, Index: index})
}

// IsEmpty reports whether applying d would leave a pool unchanged.
func (d *Diff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Removals) == 0
}
