package server

import "net/http"

// CORSMiddleware is a molecule that adds permissive cross-origin headers
// so browser clients served from other origins (or from file://) can call
// the API. The service binds to operator-controlled hosts and carries no
// credentials, so every origin is allowed.
type CORSMiddleware struct {
	allowOrigin string
}

// NewCORSMiddleware creates a CORSMiddleware. An empty allowOrigin
// defaults to "*".
func NewCORSMiddleware(allowOrigin string) *CORSMiddleware {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &CORSMiddleware{allowOrigin: allowOrigin}
}

// Handler wraps next with CORS headers and answers preflight requests
// before they reach the router.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", m.allowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
