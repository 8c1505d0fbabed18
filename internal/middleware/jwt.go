package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/utils"
)

// JWTAuth validates the Bearer access token and stores the caller in
// the context: "user_id" (uint64) and "is_staff" (bool).  Any missing or
// invalid token ends the request with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided.")
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "given token not valid or expired.")
			}
			c.Set("user_id", claims.UserID)
			c.Set("is_staff", claims.IsStaff)
			return next(c)
		}
	}
}
