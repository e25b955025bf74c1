package service_test

import (
	"context"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/version"
)

// TestSystemService tests health and version reporting.
func TestSystemService(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	if err := svc.CheckHealth(ctx); err != nil {
		t.Errorf("CheckHealth() returned unexpected error: %v", err)
	}

	info, err := svc.Version(ctx)
	if err != nil {
		t.Fatalf("Version() returned unexpected error: %v", err)
	}
	if info.AppVersion != version.Version {
		t.Errorf("AppVersion = %q, want %q", info.AppVersion, version.Version)
	}
	if info.DbVersion != 2 {
		t.Errorf("DbVersion = %d, want 2", info.DbVersion)
	}
	if info.DefaultMethod != "FIFO" || len(info.PoolMethods) != 2 {
		t.Errorf("methods = %v default %q", info.PoolMethods, info.DefaultMethod)
	}

	db.Close()
	if err := svc.CheckHealth(ctx); err == nil {
		t.Error("CheckHealth() on closed database returned nil")
	}
}
