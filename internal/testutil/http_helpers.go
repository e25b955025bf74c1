package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams creates an HTTP request with chi URL parameters.
// This helper simplifies testing chi handlers that use chi.URLParam() to extract path parameters.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/user/123-456/transaction",
//	    map[string]string{"uuid": "123-456"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return newRequest(method, path, params, nil)
}

// NewRequestWithBody creates an HTTP request with chi URL parameters and a raw body, as an
// uploaded exchange export arrives.
func NewRequestWithBody(method, path string, params map[string]string, body []byte) *http.Request {
	return newRequest(method, path, params, bytes.NewReader(body))
}

// NewJSONRequest creates an HTTP request with chi URL parameters and body encoded as JSON.
//
// Example:
//
//	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/user", nil,
//	    request.CreateUserRequest{Name: "alice"})
func NewJSONRequest(t *testing.T, method, path string, params map[string]string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := newRequest(method, path, params, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newRequest(method, path string, params map[string]string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// NewRequestWithQueryParams creates an HTTP request with chi URL parameters and query parameters.
// This helper simplifies testing handlers that use r.URL.Query() to extract query string parameters.
//
// Example:
//
//	req := testutil.NewRequestWithQueryParams(
//	    http.MethodPost,
//	    "/api/user/123-456/basis",
//	    map[string]string{"uuid": "123-456"},
//	    map[string]string{"method": "lifo", "rounding": "cents"},
//	)
func NewRequestWithQueryParams(method, path string, params, queryParams map[string]string) *http.Request {
	req := newRequest(method, path, params, nil)

	if len(queryParams) > 0 {
		q := req.URL.Query()
		for key, value := range queryParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req
}
