package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commitments/c-1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ViewerForbiddenCommitmentSubmit(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "unit-a", "viewer")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/commitments/c-1/submit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_OperatorForbiddenFiscalYearClose(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "unit-a", "operator")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fiscal-years/fy-1/close", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_OperatorAllowedSubmit(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "unit-a", "operator")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)

	var gotActor string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = ActorIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/commitments/c-1/submit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotActor != "user-1" {
		t.Fatalf("expected actor user-1, got %q", gotActor)
	}
}

func mustToken(t *testing.T, secret []byte, orgUnitID, role string) string {
	t.Helper()
	claims := Claims{
		OrgUnitID: orgUnitID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
