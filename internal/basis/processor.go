package basis

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
)

// Processor runs the matching engine over a whole transaction history.
// A Processor holds configuration only; each Process call owns a fresh pool, so one
// Processor may serve concurrent runs for different users.
type Processor struct {
	method   coinpool.Method
	oracle   ohlc.Provider
	rounding model.Rounding
	log      logrus.FieldLogger
}

// Option configures a Processor.
type Option func(*Processor)

// WithRounding sets the report rounding. The default is whole dollars.
func WithRounding(r model.Rounding) Option {
	return func(p *Processor) {
		p.rounding = r
	}
}

// WithLogger sets the logger used for per-transaction debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) {
		p.log = l
	}
}

// NewProcessor validates the configuration of a basis run.
func NewProcessor(method coinpool.Method, oracle ohlc.Provider, opts ...Option) (*Processor, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, apperrors.ErrNilPriceOracle
	}
	p := &Processor{
		method:   method,
		oracle:   oracle,
		rounding: model.RoundDollars,
		log:      logger.L,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Method returns the accounting method of the processor.
func (p *Processor) Method() coinpool.Method {
	return p.method
}

// Result is the outcome of one basis run.
type Result struct {
	Reports  []*model.CostBasisReport
	Pool     *coinpool.Pool
	Flags    []model.Flag
	Rounding model.Rounding
}

// Batch wraps the reports for totals and rendering.
func (r *Result) Batch() *model.ReportBatch {
	return model.NewReportBatch(r.Reports, r.Rounding)
}

// Process sorts txs by date, keeping input order for equal dates, and feeds them one
// at a time to ProcessOne, applying each diff before the next transaction is looked at.
// txs itself is not reordered.
//
// Any error aborts the run; no partial result is returned.
func (p *Processor) Process(ctx context.Context, txs []*model.Transaction) (*Result, error) {
	pool, err := coinpool.New(p.method)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(txs)
	for i, tx := range sorted {
		if tx == nil {
			return nil, fmt.Errorf("%w: transaction %d is nil", apperrors.ErrMissingRequiredField, i)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *model.Transaction) int {
		return a.Date.Compare(b.Date)
	})

	result := &Result{Pool: pool, Rounding: p.rounding}
	for _, tx := range sorted {
		reports, diff, flags, err := ProcessOne(ctx, tx, pool, p.oracle, p.rounding)
		if err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", tx, err)
		}
		pool.Apply(diff)
		result.Reports = append(result.Reports, reports...)
		result.Flags = append(result.Flags, flags...)

		p.log.WithFields(logrus.Fields{
			"operation": tx.Operation,
			"date":      tx.Date.Format("2006-01-02"),
			"reports":   len(reports),
			"flags":     len(flags),
		}).Debug("processed transaction")
	}

	return result, nil
}
