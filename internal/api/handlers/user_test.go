package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

func TestUserHandler(t *testing.T) {
	setupHandler := func(t *testing.T) *UserHandler {
		t.Helper()
		db := testutil.SetupTestDB(t)
		return NewUserHandler(testutil.NewTestUserService(t, db))
	}

	t.Run("creates and retrieves a user", func(t *testing.T) {
		handler := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/user", nil, request.CreateUserRequest{Name: "  alice "})
		w := httptest.NewRecorder()
		handler.CreateUser(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var created model.User
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)
		if created.ID == "" || created.Name != "alice" {
			t.Errorf("Expected trimmed name and an ID, got %+v", created)
		}

		req = testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+created.ID, map[string]string{"uuid": created.ID})
		w = httptest.NewRecorder()
		handler.GetUser(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.Users(w, httptest.NewRequest(http.MethodGet, "/api/user", nil))
		var users []model.User
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&users)
		if len(users) != 1 {
			t.Errorf("Expected 1 user, got %d", len(users))
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		handler := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/user", nil, request.CreateUserRequest{Name: " "})
		w := httptest.NewRecorder()
		handler.CreateUser(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for an unknown user", func(t *testing.T) {
		handler := setupHandler(t)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		handler.GetUser(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
