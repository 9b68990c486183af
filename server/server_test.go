package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRouter(NewHandler(HandlerConfig{}), zap.New(core))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("Request served").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/health" || fields["method"] != http.MethodGet {
		t.Errorf("Unexpected fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("Expected status 200, got %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Error("Expected a request id")
	}
}

func TestNewServer(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	if srv.Addr != ":0" || srv.Handler == nil {
		t.Errorf("Unexpected server: %+v", srv)
	}
	if srv.WriteTimeout != 0 {
		t.Error("Expected no write timeout")
	}
}
