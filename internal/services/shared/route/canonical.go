// Package route holds HTTP routing helpers shared by services.
package route

import (
	"net/http"
	"strings"
)

// Canonical redirects paths with trailing slashes to their trimmed form
// before calling next. The query string is preserved. Safe methods get a
// 301; others get a 308 so the method and body survive the redirect.
func Canonical(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := canonicalPath(r); ok {
			code := http.StatusPermanentRedirect
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				code = http.StatusMovedPermanently
			}
			http.Redirect(w, r, target, code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func canonicalPath(r *http.Request) (string, bool) {
	if r == nil || r.URL == nil {
		return "", false
	}
	path := r.URL.Path
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		trimmed = "/"
	}
	if trimmed == path {
		return "", false
	}
	if r.URL.RawQuery != "" {
		trimmed += "?" + r.URL.RawQuery
	}
	return trimmed, true
}
