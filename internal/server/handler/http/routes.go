package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/middleware"
)

// LoginPath is where the login endpoint is mounted.
const LoginPath = "/validate_login.php"

// NewRouter constructs the HTTP handler for the login service.
//
// Routes:
//
//	POST /validate_login.php → authHandler.ValidateLogin
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger)
//  2. AllowContentType("application/json")
//  3. rateLimit, on the login route only
//
// rateLimit may be nil.
func NewRouter(
	authHandler *AuthHandler,
	logger *zap.Logger,
	rateLimit func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Group(func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Post(LoginPath, authHandler.ValidateLogin)
	})

	return r
}
