package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/response"
)

// CronSecret guards scheduler endpoints with a shared bearer secret. An empty
// secret rejects every call.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				response.Unauthorized(w, "Invalid cron secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
