package service

import (
	"context"
	"database/sql"

	"github.com/samber/lo"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/database"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db            *sql.DB
	defaultMethod coinpool.Method
	features      map[string]bool
}

// NewSystemService creates a new SystemService. features lists the optional components
// enabled at startup (live price fetching, scheduled refresh, ...).
func NewSystemService(db *sql.DB, defaultMethod coinpool.Method, features map[string]bool) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:            db,
		defaultMethod: defaultMethod,
		features:      features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// Version reports the application version, the applied schema version and the
// supported pool methods.
func (s *SystemService) Version(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.CurrentVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	return model.VersionInfo{
		AppVersion:    version.Version,
		DbVersion:     dbVersion,
		Features:      s.features,
		PoolMethods:   lo.Map(coinpool.Methods, func(m coinpool.Method, _ int) string { return m.String() }),
		DefaultMethod: s.defaultMethod.String(),
	}, nil
}
