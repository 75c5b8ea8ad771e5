// Package testutil provides common test utilities and helpers for bot engine tests.
package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gestorzap/botengine/internal/api"
	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/store"
)

// NewTestServer creates a test API server backed by an in-memory store.
// The store is returned so tests can seed data directly.
func NewTestServer() (*api.Server, *store.InMemoryStore) {
	st := store.NewInMemoryStore()
	engine := flow.NewEngine(st, nil)
	return api.NewServer(st, engine, nil), st
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes a JSON response envelope and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode JSON response: %v (body: %s)", err, rr.Body.String())
	}
	if got, _ := response["status"].(string); got != expectedStatus {
		t.Errorf("expected response status %q, got %q (body: %s)", expectedStatus, got, rr.Body.String())
	}
	return response
}
