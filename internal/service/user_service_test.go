package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// TestUserService_CreateUser tests user creation.
//
// WHY: Every transaction, document and report hangs off a user, so creation must
// assign an ID and make the user retrievable immediately.
func TestUserService_CreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestUserService(t, db)

	user, err := svc.CreateUser(context.Background(), request.CreateUserRequest{Name: "  Alice  "})
	if err != nil {
		t.Fatalf("CreateUser() returned unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("CreateUser() did not assign an ID")
	}
	if user.Name != "Alice" {
		t.Errorf("CreateUser() name = %q, want trimmed Alice", user.Name)
	}

	got, err := svc.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUser() returned unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetUser() id = %s, want %s", got.ID, user.ID)
	}

	users, err := svc.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers() returned unexpected error: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}

// TestUserService_GetUser tests lookup of an unknown user.
func TestUserService_GetUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestUserService(t, db)

	if _, err := svc.GetUser(context.Background(), testutil.MakeID()); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
