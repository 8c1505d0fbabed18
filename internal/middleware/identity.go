package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns the caller id set by JWTAuth as a string, or "anon".
func userID(c echo.Context) string {
	if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
