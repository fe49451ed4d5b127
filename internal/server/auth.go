package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v4"

	"github.com/desertthunder/cpx/internal/shared"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUser returns a copy of ctx carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserFromContext returns the authenticated user id stored by [Authenticator].
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// TokenIssuer signs and verifies HS256 bearer tokens whose subject is a user id.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a [TokenIssuer] from the auth config. A zero TTL issues tokens without expiry.
func NewTokenIssuer(cfg shared.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL.Duration,
		now:    time.Now,
	}
}

// Issue returns a signed token for userID.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("%w: jwt secret", shared.ErrMissingCredentials)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		Issuer:   t.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a signed token and returns its subject.
// Without a configured secret every token is rejected.
func (t *TokenIssuer) Verify(token string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", shared.ErrInvalidToken)
	}
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", shared.ErrInvalidToken
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer %q", shared.ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", shared.ErrInvalidToken)
	}

	return claims.Subject, nil
}

// Authenticator rejects requests without a valid bearer token and stores the token subject
// as the user id in the request context.
func Authenticator(tokens *TokenIssuer, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				RespondError(w, http.StatusUnauthorized, "Authentication required.", nil)
				return
			}

			userID, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("rejected token", "error", err, "path", r.URL.Path)
				RespondError(w, http.StatusUnauthorized, "Invalid or expired token.", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}
