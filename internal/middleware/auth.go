package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const AccountIDKey contextKey = "account_id"

// CookieName is the session cookie. The name matches the cookie the
// previous deployment issued so existing browser sessions keep working.
const CookieName = "access_token_cookie"

// ErrUnauthenticated covers a missing, malformed, forged or expired token.
// Callers never need to tell these apart.
var ErrUnauthenticated = errors.New("authentication required")

type JWTAuth struct {
	Secret []byte
	TTL    time.Duration
	Secure bool

	// Now is the clock used for issuing and validating tokens.
	Now func() time.Time
}

func NewJWTAuth(secret string, ttl time.Duration, secure bool) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), TTL: ttl, Secure: secure, Now: time.Now}
}

// GenerateAccessToken creates a JWT for accountID that expires after TTL.
func (j *JWTAuth) GenerateAccessToken(accountID int64) (string, error) {
	now := j.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ParseToken verifies tokenStr and returns the account id it was issued for.
func (j *JWTAuth) ParseToken(tokenStr string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrUnauthenticated
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return 0, ErrUnauthenticated
	}
	return accountID, nil
}

// Authenticate resolves the account id carried by r. The session cookie is
// tried first; a Bearer header is used when the cookie is absent or its
// token does not verify.
func (j *JWTAuth) Authenticate(r *http.Request) (int64, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if accountID, err := j.ParseToken(c.Value); err == nil {
			return accountID, nil
		}
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return 0, ErrUnauthenticated
	}
	return j.ParseToken(parts[1])
}

// SetCookie stores token in the HTTP-only session cookie.
func (j *JWTAuth) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(j.TTL / time.Second),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (j *JWTAuth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware guards JSON routes: failures get a 401 body and the stale
// cookie is cleared.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := j.Authenticate(r)
		if err != nil {
			j.clearStale(w, r)
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing, invalid or expired token", r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
	})
}

// PageMiddleware guards rendered pages: failures redirect to the login page.
func (j *JWTAuth) PageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := j.Authenticate(r)
		if err != nil {
			j.clearStale(w, r)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
	})
}

func (j *JWTAuth) clearStale(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(CookieName); err == nil {
		j.ClearCookie(w)
	}
}

// WithAccountID attaches the authenticated account id to ctx.
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, AccountIDKey, accountID)
}

// GetAccountID extracts the account id from request context
func GetAccountID(ctx context.Context) int64 {
	id, _ := ctx.Value(AccountIDKey).(int64)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
