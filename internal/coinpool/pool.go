// Package coinpool holds the not yet disposed lots of every asset, ordered so that
// index 0 is always the next lot to sell.
package coinpool

import (
	"slices"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// Pool maps an asset symbol to its ordered lots. It is owned by a single basis run
// and is not safe for concurrent use.
type Pool struct {
	method Method
	lots   map[string][]*model.Transaction
}

// New returns an empty pool. An unknown method is a configuration error.
func New(method Method) (*Pool, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		method: method,
		lots:   make(map[string][]*model.Transaction),
	}, nil
}

// Method returns the accounting method the pool was created with.
func (p *Pool) Method() Method {
	return p.method
}

// Get returns the lots of symbol in sale order. The returned slice is a copy.
func (p *Pool) Get(symbol string) []*model.Transaction {
	return slices.Clone(p.lots[symbol])
}

// Len returns the number of lots held for symbol.
func (p *Pool) Len(symbol string) int {
	return len(p.lots[symbol])
}

// Symbols returns the symbols that still hold lots, sorted.
func (p *Pool) Symbols() []string {
	symbols := lo.Filter(lo.Keys(p.lots), func(s string, _ int) bool {
		return len(p.lots[s]) > 0
	})
	slices.Sort(symbols)
	return symbols
}

// Apply mutates the pool by d. Removals run first so that a split remainder inserted at
// the front of the list is never swept away with the lots it was split from.
func (p *Pool) Apply(d *Diff) {
	if d == nil {
		return
	}
	for _, r := range d.Removals {
		current := p.lots[r.Symbol]
		if r.Index+1 >= len(current) {
			delete(p.lots, r.Symbol)
			continue
		}
		p.lots[r.Symbol] = slices.Clone(current[r.Index+1:])
	}
	for _, a := range d.Additions {
		p.insert(a.Symbol, a.Transaction)
	}
}

func (p *Pool) insert(symbol string, tx *model.Transaction) {
	current := p.lots[symbol]
	if p.method == LIFO || tx.Operation == model.OperationSplit {
		p.lots[symbol] = append([]*model.Transaction{tx}, current...)
		return
	}
	p.lots[symbol] = append(current, tx)
}
