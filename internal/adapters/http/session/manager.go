package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slidespace/backend/internal/core/domain"
)

const (
	CookieName = "slidespace_session"
	CSRFHeader = "X-CSRF-Token"
)

// Claims is the session payload carried in the signed cookie. The CSRF token
// lives inside the claims so the double-submit check needs no server state.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	CSRF   string `json:"csrf"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(secret string, ttl time.Duration, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}, nil
}

// Issue signs a fresh session for the user and sets the cookie. The CSRF
// token rotates together with the session.
func (m *Manager) Issue(w http.ResponseWriter, user *domain.User) (*Claims, error) {
	return m.issue(w, user.ID, user.Name, string(user.Role))
}

// IssueAnonymous creates a session that carries only a CSRF token. It lets a
// client fetch the token before authenticating; the empty subject never passes
// the auth gate.
func (m *Manager) IssueAnonymous(w http.ResponseWriter) (*Claims, error) {
	return m.issue(w, "", "", "")
}

func (m *Manager) issue(w http.ResponseWriter, userID, name, role string) (*Claims, error) {
	csrf, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		CSRF:   csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return claims, nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest parses and verifies the session cookie.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "session", fmt.Errorf("no session cookie"))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrUnauthorized, "session", fmt.Errorf("invalid session"))
	}
	return claims, nil
}

// Authenticated reports whether the session belongs to a logged-in user, as
// opposed to an anonymous CSRF-only session.
func (c *Claims) Authenticated() bool {
	return c != nil && c.UserID != ""
}

// VerifyCSRF applies the double-submit check: the header token must match the
// one baked into the session claims.
func (m *Manager) VerifyCSRF(r *http.Request, claims *Claims) error {
	header := r.Header.Get(CSRFHeader)
	if header == "" || claims.CSRF == "" {
		return domain.WrapError(domain.ErrForbidden, "csrf", fmt.Errorf("missing csrf token"))
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(claims.CSRF)) != 1 {
		return domain.WrapError(domain.ErrForbidden, "csrf", fmt.Errorf("csrf token mismatch"))
	}
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
