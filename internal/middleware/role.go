package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireStaffForWrites lets every authenticated caller read and only
// staff write.  GET, HEAD and OPTIONS pass; any other method needs the
// "is_staff" flag set by JWTAuth, otherwise 403.
func RequireStaffForWrites() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSafeMethod(c.Request().Method) {
				return next(c)
			}
			if staff, _ := c.Get("is_staff").(bool); !staff {
				return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action.")
			}
			return next(c)
		}
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
