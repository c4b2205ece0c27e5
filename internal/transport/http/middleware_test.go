package httptransport

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/require"
)

var testCSRF = CSRFConfig{
	Key:            bytes.Repeat([]byte("k"), 32),
	TrustedOrigins: []string{"localhost:8080"},
	ExemptPrefixes: []string{"/api/"},
}

func tokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csrf.Token(r)))
	})
}

func TestCSRFRejectsFormPostWithoutToken(t *testing.T) {
	h := CSRF(testCSRF)(tokenHandler())

	req := httptest.NewRequest(http.MethodPost, "/users/1", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsFormPostWithToken(t *testing.T) {
	h := CSRF(testCSRF)(tokenHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1/edit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Body.String()
	require.NotEmpty(t, token)

	form := url.Values{"gorilla.csrf.Token": {token}, "name": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/users/1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFExemptsAPIPrefix(t *testing.T) {
	h := CSRF(testCSRF)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, contentType := range []string{"application/json", "text/plain", ""} {
		req := httptest.NewRequest(http.MethodPut, "/api/users/1", strings.NewReader(`{}`))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, contentType)
	}

	// JSON bodies outside the API still need a token.
	req := httptest.NewRequest(http.MethodPost, "/users/1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChainOrderAndHeaders(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), mark("inner"), SecurityHeaders, RequestLogger(log.New(&buf, "", 0)), mark("outer"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teams", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Contains(t, buf.String(), "GET /teams 418")
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := DefaultServerConfig(":9999")
	srv := NewServer(cfg, http.NotFoundHandler())
	require.Equal(t, ":9999", srv.Addr)
	require.Equal(t, cfg.WriteTimeout, srv.WriteTimeout)
	require.Equal(t, cfg.ReadHeaderTimeout, srv.ReadHeaderTimeout)
}
