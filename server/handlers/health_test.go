package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nnnkkk7/sql-playground/pkg/health"
	"github.com/nnnkkk7/sql-playground/server/types"
)

func getHealth(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, types.HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp types.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return rec, resp
}

// TestHealthHandler_Check tests healthy and unhealthy probes through the router.
func TestHealthHandler_Check(t *testing.T) {
	srv := setupTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec, resp := getHealth(t, srv.handler, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, rec.Code)
		}
		if resp.Status != health.StatusHealthy || resp.Database != health.DatabaseConnected {
			t.Errorf("%s: unexpected body %+v", path, resp)
		}
		if _, err := resp.ParseTimestamp(); err != nil {
			t.Errorf("%s: timestamp %q: %v", path, resp.Timestamp, err)
		}
	}

	// The database becomes unreachable.
	if err := srv.mgr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rec, resp := getHealth(t, srv.handler, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Status != health.StatusUnhealthy || resp.Database != health.DatabaseDisconnected {
		t.Errorf("unexpected body %+v", resp)
	}
	if resp.Error == "" {
		t.Error("error should be reported")
	}
}

type stubProber struct {
	status health.Status
}

func (s stubProber) Probe(context.Context) health.Status {
	return s.status
}

// TestHealthHandler_Timestamp tests the timestamp format.
func TestHealthHandler_Timestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	h := NewHealthHandler(stubProber{status: health.Status{
		Status:    health.StatusHealthy,
		Database:  health.DatabaseConnected,
		Timestamp: ts,
	}})

	rec, resp := getHealth(t, http.HandlerFunc(h.Check), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Timestamp != "2024-01-02T03:04:05.006Z" {
		t.Errorf("Timestamp = %q", resp.Timestamp)
	}
}
