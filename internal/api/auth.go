package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/showup-club/showup/internal/domain"
)

// ─── Caller Identity ────────────────────────────────────────────────────────
// Callers authenticate with an HS256 bearer token whose "sub" claim is
// their identity. Read-only routes accept anonymous requests.

// ErrNoSecret is returned when the API has no JWT secret configured.
var ErrNoSecret = errors.New("api: jwt secret is not configured")

// Authenticator issues and verifies caller tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator creates an authenticator signing with secret.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for who.
func (a *Authenticator) Issue(who domain.Identity) (string, error) {
	if !who.Valid() {
		return "", domain.ErrInvalidRecipient
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   who.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses a token and returns its subject identity.
func (a *Authenticator) Verify(token string) (domain.Identity, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	who, err := domain.ParseIdentity(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	return who, nil
}

// Middleware attaches the caller identity when a valid bearer token is
// present and rejects requests carrying an invalid one.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		if a == nil {
			writeError(w, http.StatusUnauthorized, ErrNoSecret.Error(), "unauthenticated")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "authorization header must be a bearer token", "unauthenticated")
			return
		}
		who, err := a.Verify(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error(), "unauthenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), who)))
	})
}

type contextKey string

const callerKey contextKey = "caller"

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, callerKey, who)
}

// Caller returns the authenticated caller, if any.
func Caller(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(callerKey).(domain.Identity)
	return who, ok && who != ""
}
