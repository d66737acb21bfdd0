package httpmiddleware

import (
	"net/http"
	"strings"
)

// CORSConfig configures cross-origin access for the browser storefront.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty, or the single
	// entry "*", allows every origin.
	AllowOrigins []string
	// AllowCredentials exposes responses to credentialed requests. The
	// wildcard origin is never sent when this is set; the specific origin is
	// echoed instead.
	AllowCredentials bool
}

// corsMethods and corsHeaders cover everything the storefront and the admin
// console send: JSON bodies, bearer tokens, and the cart session header.
const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Session-ID, X-Request-ID"
)

// CORS returns a middleware handling cross-origin requests, including
// preflights. Disallowed origins get responses without CORS headers, which
// the browser then blocks.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]string, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(o)] = o
	}
	// Credentials forbid the wildcard; echo the specific origin instead.
	wildcard := allowAll && !cfg.AllowCredentials

	resolve := func(origin string) string {
		if wildcard {
			return "*"
		}
		if allowAll {
			return origin
		}
		return allowed[strings.ToLower(origin)]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !wildcard {
				w.Header().Add("Vary", "Origin")
			}
			allowOrigin := resolve(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowOrigin != "" {
					w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
					w.Header().Set("Access-Control-Allow-Methods", corsMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
