package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telegram-subscription-tracker/internal/infra/metrics"
)

// ===== JWT primitives =====

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

const roleAdmin = "admin"

type AuthConfig struct {
	HMACSecret []byte
	Issuer     string
	TTL        time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret, issuer string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthManager{cfg: AuthConfig{HMACSecret: []byte(secret), Issuer: issuer, TTL: ttl}}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint signs an admin token for subject.
func (a *AuthManager) Mint(subject string, now time.Time) (string, error) {
	if len(a.cfg.HMACSecret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	claims := AdminClaims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
}

// ParseFromRequest reads "Authorization: Bearer <jwt>".
func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, ErrMissingToken
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*AdminClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return a.cfg.HMACSecret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Role != roleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Require rejects requests without a valid admin token. With no secret
// configured every admin route is closed.
func (a *AuthManager) Require(route string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(a.cfg.HMACSecret) == 0 {
				metrics.IncAdminRequest(route, "forbidden")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if _, err := a.ParseFromRequest(r); err != nil {
				metrics.IncAdminRequest(route, "unauthorized")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			metrics.IncAdminRequest(route, "authorized")
			next.ServeHTTP(w, r)
		})
	}
}
