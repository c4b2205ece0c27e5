package auth

import (
	"net/http"
	"strings"
)

// APIPrefix is the path prefix that requires a bearer token.
const APIPrefix = "/api/"

// TokenCookie carries the dashboard token for browser sessions. It is only
// read outside APIPrefix, where form posts are CSRF protected.
const TokenCookie = "octofit_token"

// Skipper lets callers bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// SkipNonAPI requires a token only under APIPrefix. HTML pages, health and
// metrics stay public.
func SkipNonAPI(r *http.Request) bool {
	return !strings.HasPrefix(r.URL.Path, APIPrefix)
}

// Middleware validates bearer tokens and stores the claims on the request.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware builds a Middleware. A nil skipper defaults to SkipNonAPI.
func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	if skipper == nil {
		skipper = SkipNonAPI
	}
	return Middleware{Config: cfg, Skipper: skipper}
}

// Wrap wraps next with authentication. Skipped requests are never rejected,
// but a valid header or cookie token still puts claims on the context.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			if claims, err := m.identify(r); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="octofit"`)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, ErrInvalidToken
	}
	return Parse(token, m.Config)
}

func (m Middleware) identify(r *http.Request) (*Claims, error) {
	if r.Header.Get("Authorization") != "" {
		return m.parseRequest(r)
	}
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return nil, ErrMissingToken
	}
	return Parse(cookie.Value, m.Config)
}
