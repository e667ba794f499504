package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/jwt"
)

// AuthRequired resolves the token verified by jwtauth to an application user
// and stores the profile in the request context.
func AuthRequired(users user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			userID, err := jwt.SubjectFromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			profile, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, user.ErrProfileNotFound) {
					slog.Error("failed to load user profile", "user_id", userID, "error", err)
				}
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), &profile)))
		}
		return http.HandlerFunc(hfn)
	}
}
