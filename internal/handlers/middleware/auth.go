package middleware

import (
	"context"
	"net/http"

	"github.com/checkdesk/checkdesk/internal/handlers/render"
	"github.com/checkdesk/checkdesk/internal/handlers/staffctx"
	"github.com/checkdesk/checkdesk/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.Staff, error)
}

func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staff, err := as.Auth(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := staffctx.New(r.Context(), staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
