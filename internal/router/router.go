package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/middleware"
)

// Setup installs the validator, the error renderer and the middleware
// every route shares: trailing slash removal, request ids, request
// logging and panic recovery.
func Setup(e *echo.Echo) {
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth mounts the account endpoints under /api/user.  Only /me
// needs an access token; logout accepts either a bearer token or a
// refresh token.  extra runs before every handler of the group (rate
// limiting in production).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/api/user", extra...)
	g.POST("/register", a.Register)
	g.POST("/token", a.Login)
	g.POST("/token/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
