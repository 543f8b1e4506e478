package controller

import "net/http"

const (
	corsAllowHeaders = "Content-Type, Content-Length, Accept, Accept-Encoding, Cache-Control, Origin, X-Request-Id"
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
)

// CORS returns a middleware that allows allowOrigin ("*" when empty) to call
// the API from a browser. OPTIONS preflight requests are answered with 204 No
// Content and never reach next.
func CORS(allowOrigin string) func(http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Expose-Headers", "X-Request-Id")
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
