package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// UserClaims is the subset of the auth provider's access token we rely on.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the auth provider.
// The token subject is the user id.
type Authenticator struct {
	secret []byte
	log    *zerolog.Logger
}

func NewAuthenticator(secret string, logger *zerolog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: logger}
}

// Mint issues a token for userID. It is used by tooling and tests.
func (a *Authenticator) Mint(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) ParseFromRequest(r *http.Request) (*UserClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return nil, errMissingToken
	}
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, errInvalidToken
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *Authenticator) parse(tok string) (*UserClaims, error) {
	if len(a.secret) == 0 {
		return nil, errInvalidToken
	}
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

type userKey struct{}

// UserID returns the authenticated user, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey{}).(string)
	return v
}

func withUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userKey{}, userID)
	ctx = logging.WithUserID(ctx, userID)
	return r.WithContext(ctx)
}

// RequireUser rejects requests without a valid bearer token.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.ParseFromRequest(r)
		if err != nil {
			if len(a.secret) == 0 {
				logging.With(r.Context(), a.log).Error().Msg("auth secret is not configured")
			}
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, withUser(r, claims.Subject))
	})
}

// OptionalUser treats a missing or invalid token as an anonymous request.
func (a *Authenticator) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.ParseFromRequest(r)
		if err != nil {
			if !errors.Is(err, errMissingToken) {
				logging.With(r.Context(), a.log).Debug().Msg("invalid token on optional-auth route, continuing as guest")
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, claims.Subject))
	})
}
