package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReadinessNoChecks(t *testing.T) {
	checker := New(time.Second)
	status := checker.Readiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("expected ready with no checks, got %s", status.Status)
	}
}

func TestReadinessAggregation(t *testing.T) {
	checker := New(time.Second)
	checker.Register("storage", func(ctx context.Context) error { return nil })
	checker.Register("audit", func(ctx context.Context) error { return nil })

	status := checker.Readiness(context.Background())
	if status.Status != "ready" {
		t.Fatalf("expected ready, got %s", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("expected 2 check results, got %d", len(status.Checks))
	}

	checker.Register("audit", func(ctx context.Context) error {
		return errors.New("database locked")
	})
	status = checker.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("expected degraded, got %s", status.Status)
	}
	if status.Checks["audit"].Message != "database locked" {
		t.Errorf("error message not surfaced: %+v", status.Checks["audit"])
	}
	if status.Checks["storage"].Status != "ok" {
		t.Errorf("healthy component marked %s", status.Checks["storage"].Status)
	}
}

func TestReadinessTimeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("expected degraded on timeout, got %s", status.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)
	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("expected ok, got %s", status.Status)
	}
}

func TestReadinessHandlerDegraded(t *testing.T) {
	checker := New(time.Second)
	checker.Register("storage", func(ctx context.Context) error {
		return errors.New("unreachable")
	})

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandlersRejectPost(t *testing.T) {
	checker := New(time.Second)
	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestMount(t *testing.T) {
	mux := http.NewServeMux()
	Mount(mux, New(time.Second), "1.2.3", "abc123", "2026-01-01")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("wrong version info: %+v", info)
	}
}
