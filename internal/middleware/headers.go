package middleware

import "net/http"

// SecurityHeaders sets response headers for pages that carry identifiers in
// their URL.
//
//   - Referrer-Policy: no-referrer → the /auth?discord=… URL is not leaked to
//     GitHub (or anyone else) in the Referer header when the browser navigates
//   - Cache-Control: no-store      → redirects embed a signed state; they must
//     not be replayed from a shared cache
//   - X-Frame-Options / frame-ancestors → the confirmation page can't be framed
//   - X-Content-Type-Options: nosniff
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; style-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
