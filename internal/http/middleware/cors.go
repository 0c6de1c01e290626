package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedHeaders = "Content-Type, X-Request-ID"
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsExposedHeaders = "Content-Disposition, X-Request-ID"
)

// CORS lets the booking widget call the API from the salon site. An origin
// of "*" echoes any Origin back.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			allowAny = true
		default:
			allow[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := origin != "" && (allowAny || hasOrigin(allow, origin))
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasOrigin(allow map[string]struct{}, origin string) bool {
	_, ok := allow[origin]
	return ok
}
