package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "u-1", Name: "Ada", Role: domain.RoleUser}
}

func issueAndAttach(t *testing.T, m *Manager) (*Claims, *http.Request) {
	t.Helper()
	res := httptest.NewRecorder()
	claims, err := m.Issue(res, testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	return claims, req
}

func TestSessionRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	issued, req := issueAndAttach(t, m)
	parsed, err := m.FromRequest(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.UserID != "u-1" || parsed.Role != "user" || parsed.CSRF != issued.CSRF {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	issuer, _ := NewManager("secret-a", time.Hour, false)
	verifier, _ := NewManager("secret-b", time.Hour, false)

	_, req := issueAndAttach(t, issuer)
	_, err := verifier.FromRequest(req)
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSessionRejectsMissingCookie(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	_, err := m.FromRequest(req)
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCSRFDoubleSubmit(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour, false)
	claims, req := issueAndAttach(t, m)

	if err := m.VerifyCSRF(req, claims); !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden without header, got %v", err)
	}

	req.Header.Set(CSRFHeader, "wrong-token")
	if err := m.VerifyCSRF(req, claims); !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for wrong token, got %v", err)
	}

	req.Header.Set(CSRFHeader, claims.CSRF)
	if err := m.VerifyCSRF(req, claims); err != nil {
		t.Fatalf("expected csrf to pass, got %v", err)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour, false)

	res := httptest.NewRecorder()
	m.Clear(res)

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %v", cookies)
	}
}
