package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mlucchetti/rfdrelax/internal/config"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	cfg := config.Config{APIKey: "secret-key"}
	handler := newTestHandler(cfg, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/relax", strings.NewReader(relaxPayload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthMiddlewareRejectsWrongToken(t *testing.T) {
	cfg := config.Config{APIKey: "secret-key"}
	handler := newTestHandler(cfg, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/relax", strings.NewReader(relaxPayload))
	req.Header.Set("Authorization", "Bearer other-key")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	cfg := config.Config{APIKey: "secret-key"}
	handler := newTestHandler(cfg, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/relax", strings.NewReader(relaxPayload))
	req.Header.Set("Authorization", "Bearer secret-key")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestAuthMiddlewareKeepsHealthOpen(t *testing.T) {
	cfg := config.Config{APIKey: "secret-key"}
	handler := newTestHandler(cfg, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestAuthMiddlewareDisabledWithoutKey(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/relax", strings.NewReader(relaxPayload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}
