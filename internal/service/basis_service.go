package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/basis"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
)

// maxParallelRuns bounds RunAll. Each run is sequential; only users run side by side.
const maxParallelRuns = 4

// BasisService runs the cost basis engine over stored transactions and keeps the
// latest reports per user.
type BasisService struct {
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
	reportRepo      *repository.ReportRepository
	oracle          ohlc.Provider
	defaultMethod   coinpool.Method
	defaultRounding model.Rounding
	log             logrus.FieldLogger
}

// NewBasisService creates a new BasisService with the provided dependencies.
func NewBasisService(
	userRepo *repository.UserRepository,
	transactionRepo *repository.TransactionRepository,
	reportRepo *repository.ReportRepository,
	oracle ohlc.Provider,
	defaultMethod coinpool.Method,
	defaultRounding model.Rounding,
	log logrus.FieldLogger,
) *BasisService {
	return &BasisService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		reportRepo:      reportRepo,
		oracle:          oracle,
		defaultMethod:   defaultMethod,
		defaultRounding: defaultRounding,
		log:             log,
	}
}

// DefaultMethod returns the pool method used when a run does not name one.
func (s *BasisService) DefaultMethod() coinpool.Method {
	return s.defaultMethod
}

// DefaultRounding returns the rounding used when a run does not name one.
func (s *BasisService) DefaultRounding() model.Rounding {
	return s.defaultRounding
}

// Run computes the cost basis of every stored transaction of userID and replaces the
// user's stored reports with the outcome. Nothing is stored when the run fails.
func (s *BasisService) Run(ctx context.Context, userID string, method coinpool.Method, rounding model.Rounding) (*basis.Result, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"user": userID, "method": method})

	processor, err := basis.NewProcessor(method, s.oracle, basis.WithRounding(rounding), basis.WithLogger(log))
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.GetTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := processor.Process(ctx, txs)
	if err != nil {
		log.WithError(err).Warn("basis run failed")
		return nil, err
	}
	if err := s.reportRepo.ReplaceReports(ctx, userID, method.String(), result.Reports); err != nil {
		return nil, err
	}

	totals := result.Batch().Totals()
	log.WithFields(logrus.Fields{
		"transactions": len(txs),
		"reports":      len(result.Reports),
		"flags":        len(result.Flags),
		"gainOrLoss":   totals.GainOrLoss.String(),
	}).Info("basis run complete")
	return result, nil
}

// RunSummary is the outcome of one user's run within RunAll.
type RunSummary struct {
	UserID  string `json:"userId"`
	Method  string `json:"method"`
	Reports int    `json:"reports"`
	Flags   int    `json:"flags"`
}

// RunAll runs the engine for every user. Users are independent, so runs proceed in
// parallel; the first failure cancels the remaining runs.
func (s *BasisService) RunAll(ctx context.Context, method coinpool.Method, rounding model.Rounding) ([]RunSummary, error) {
	users, err := s.userRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	summaries := make([]RunSummary, len(users))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRuns)
	for i, u := range users {
		g.Go(func() error {
			result, err := s.Run(ctx, u.ID, method, rounding)
			if err != nil {
				return fmt.Errorf("user %s: %w", u.ID, err)
			}
			mu.Lock()
			summaries[i] = RunSummary{
				UserID:  u.ID,
				Method:  method.String(),
				Reports: len(result.Reports),
				Flags:   len(result.Flags),
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetReports returns the stored reports of userID's most recent run and the method it used.
func (s *BasisService) GetReports(ctx context.Context, userID string) (*model.ReportBatch, string, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, "", err
	}
	reports, method, err := s.reportRepo.GetReports(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	rounding := s.defaultRounding
	if len(reports) > 0 {
		rounding = reports[0].Rounding
	}
	return model.NewReportBatch(reports, rounding), method, nil
}
