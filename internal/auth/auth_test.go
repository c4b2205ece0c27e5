package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "octofit"}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "coach-1",
		"iss":    "octofit",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeDashboardRead, ScopeUsersWrite},
	}
}

func TestParseValidToken(t *testing.T) {
	claims, err := Parse(signToken(t, validClaims(), testConfig.Secret), testConfig)
	require.NoError(t, err)
	require.Equal(t, "coach-1", claims.Subject)
	require.True(t, claims.HasScope(ScopeDashboardRead))
	require.True(t, claims.HasScope(ScopeUsersWrite))
	require.False(t, claims.HasScope("admin"))
	require.False(t, claims.ExpiresAt.IsZero())
}

func TestParseSpaceSeparatedScope(t *testing.T) {
	c := validClaims()
	delete(c, "scopes")
	c["scope"] = "dashboard:read  users:write"
	claims, err := Parse(signToken(t, c, testConfig.Secret), testConfig)
	require.NoError(t, err)
	require.Len(t, claims.Scopes, 2)
}

func TestParseRejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"
	noSubject := validClaims()
	delete(noSubject, "sub")

	cases := map[string]string{
		"bad signature": signToken(t, validClaims(), "other-secret"),
		"expired":       signToken(t, expired, testConfig.Secret),
		"wrong issuer":  signToken(t, wrongIssuer, testConfig.Secret),
		"no subject":    signToken(t, noSubject, testConfig.Secret),
		"garbage":       "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddlewareProtectsAPIOnly(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewMiddleware(testConfig, nil).Wrap(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, seen)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/views/users", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), ErrMissingToken.Error())

	req := httptest.NewRequest(http.MethodGet, "/api/views/users", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/views/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), testConfig.Secret))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "coach-1", seen.Subject)
}

func TestMiddlewareIdentifiesPageRequests(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewMiddleware(testConfig, nil).Wrap(next)
	token := signToken(t, validClaims(), testConfig.Secret)

	req := httptest.NewRequest(http.MethodPost, "/users/7", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	require.True(t, seen.HasScope(ScopeUsersWrite))

	seen = nil
	req = httptest.NewRequest(http.MethodPost, "/users/7", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, seen)

	// The cookie never authenticates the JSON API.
	req = httptest.NewRequest(http.MethodPut, "/api/users/7", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
