package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, Accept"
	corsMaxAge       = "86400"
)

// corsMethods are the methods a preflight can be granted.
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// CORS sets CORS headers for allowed origins and answers OPTIONS preflight
// requests with 204.
//
// When routes is non-nil a preflight is granted only the methods routes
// serves for the requested path; a path it does not serve gets no grant at
// all, so the browser stops the cross-origin call before sending it.
func CORS(allowedOrigins []string, routes *http.ServeMux, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, ok := allowed[origin]
		h := w.Header()
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			if ok {
				if methods := routedMethods(routes, r); len(methods) > 0 {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		next.ServeHTTP(w, r)
	})
}

// routedMethods lists the corsMethods that routes has a pattern for at the
// request's path. A nil routes grants all of them.
func routedMethods(routes *http.ServeMux, r *http.Request) []string {
	if routes == nil {
		return corsMethods
	}
	var out []string
	for _, m := range corsMethods {
		candidate := r.WithContext(r.Context())
		candidate.Method = m
		if _, pattern := routes.Handler(candidate); pattern != "" {
			out = append(out, m)
		}
	}
	return out
}
