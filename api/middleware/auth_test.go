package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/qrobotics/qrobotics-backend/pkg/auth"
	"github.com/qrobotics/qrobotics-backend/pkg/config"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "qrobotics-test",
	ExpirationMinutes: 30,
}

type fakeSessionChecker struct {
	sessions map[string]bool
	err      error
}

func (f *fakeSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.sessions[accessID], nil
}

func mintTestToken(t *testing.T, userID int64, role enums.UserRole, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/store/cart", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsPrincipal(t *testing.T) {
	checker := &fakeSessionChecker{sessions: map[string]bool{"jti-1": true}}
	var gotUser int64
	var gotRole enums.UserRole
	handler := Auth(testJWTConfig, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/store/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, 42, enums.UserRoleCustomer, "jti-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != 42 || gotRole != enums.UserRoleCustomer {
		t.Fatalf("unexpected principal: user=%d role=%s", gotUser, gotRole)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	checker := &fakeSessionChecker{sessions: map[string]bool{}}
	handler := Auth(testJWTConfig, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/store/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, 42, enums.UserRoleCustomer, "jti-gone"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdminBlocksCustomers(t *testing.T) {
	handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req = req.WithContext(WithPrincipal(req.Context(), 5, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req = req.WithContext(WithPrincipal(req.Context(), 5, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
