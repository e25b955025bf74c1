// Package formats turns exchange exports into exchange-independent transactions.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// Parser reads one exchange's export format.
//
// Parse returns an error wrapping apperrors.ErrUnrecognizedFormat when the input is not in
// the parser's format at all, and apperrors.ErrMalformedRow when it is but a row is bad.
type Parser interface {
	Name() string
	Parse(r io.Reader) ([]*model.Transaction, error)
}

// Parsed is the outcome of a successful Registry.Parse.
type Parsed struct {
	Format       string
	Transactions []*model.Transaction
}

// Registry is an ordered list of parsers. Order matters when no hint is given: the first
// parser that recognizes the input wins.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry trying parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry knows every built-in format.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewAdhocParser(),
		NewGeminiParser(),
		NewCoinbaseProParser(),
		NewBinanceParser(),
		NewBitMEXParser(),
		NewCoinbaseParser(),
		NewCoinbaseTTRParser(),
	)
}

// Names lists the registered format names in trial order.
func (r *Registry) Names() []string {
	return lo.Map(r.parsers, func(p Parser, _ int) string { return p.Name() })
}

// Lookup finds a parser by case-insensitive name.
func (r *Registry) Lookup(name string) (Parser, bool) {
	return lo.Find(r.parsers, func(p Parser) bool { return strings.EqualFold(p.Name(), name) })
}

// Parse reads data with the hinted parser, or with each parser in turn when hint is empty.
//
// A parser that recognizes the input but fails on a row stops the search; the row error is
// more useful than "unrecognized format".
func (r *Registry) Parse(data []byte, hint string) (*Parsed, error) {
	if hint = strings.TrimSpace(hint); hint != "" {
		p, ok := r.Lookup(hint)
		if !ok {
			return nil, fmt.Errorf("%w: unknown format %q, expected one of %s",
				apperrors.ErrUnrecognizedFormat, hint, strings.Join(r.Names(), ", "))
		}
		txs, err := p.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &Parsed{Format: p.Name(), Transactions: txs}, nil
	}

	for _, p := range r.parsers {
		txs, err := p.Parse(bytes.NewReader(data))
		if err == nil {
			return &Parsed{Format: p.Name(), Transactions: txs}, nil
		}
		if !errors.Is(err, apperrors.ErrUnrecognizedFormat) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: tried %s", apperrors.ErrUnrecognizedFormat, strings.Join(r.Names(), ", "))
}
