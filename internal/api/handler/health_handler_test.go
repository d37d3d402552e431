package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubStoreStatus bool

func (s stubStoreStatus) Durable(context.Context) bool { return bool(s) }

func TestHealth_Liveness(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodGet, "/health", "")
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	e := newTestEcho()

	h := NewHealthDependenciesHandler(map[string]Pinger{"redis": stubPinger{}}, stubStoreStatus(true))
	c, rec := newJSONContext(e, http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp.Store != "durable" {
		t.Fatalf("unexpected readiness: %d %+v", rec.Code, resp)
	}

	h = NewHealthDependenciesHandler(map[string]Pinger{"redis": stubPinger{err: errors.New("down")}}, stubStoreStatus(false))
	c, rec = newJSONContext(e, http.MethodGet, "/health/ready", "")
	_ = h.Readiness(c)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusServiceUnavailable || resp.Store != "memory" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected readiness: %d %+v", rec.Code, resp)
	}
}
