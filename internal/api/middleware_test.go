package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestInternalKeyMiddleware_AllowsMatchingKey(t *testing.T) {
	handler := InternalKeyMiddleware("secret-key")(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/assistant/messages", nil)
	req.Header.Set("X-Internal-Api-Key", "secret-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a matching key, got %d", rec.Code)
	}
}

func TestInternalKeyMiddleware_RejectsWrongKey(t *testing.T) {
	handler := InternalKeyMiddleware("secret-key")(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/assistant/messages", nil)
	req.Header.Set("X-Internal-Api-Key", "wrong-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong key, got %d", rec.Code)
	}
}

func TestInternalKeyMiddleware_RejectsMissingKey(t *testing.T) {
	handler := InternalKeyMiddleware("secret-key")(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/assistant/messages", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a missing key, got %d", rec.Code)
	}
}

func TestInternalKeyMiddleware_RejectsEverythingWhenUnconfigured(t *testing.T) {
	handler := InternalKeyMiddleware("")(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/assistant/messages", nil)
	req.Header.Set("X-Internal-Api-Key", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("an empty configured key must reject all requests, got %d", rec.Code)
	}
}
