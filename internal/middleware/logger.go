package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request.  Responses with a
// status of 400 or more are logged at error level.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			entry := logrus.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     res.Status,
				"duration":   time.Since(start),
				"client_ip":  c.RealIP(),
				"user_agent": c.Request().UserAgent(),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			})
			if res.Status >= 400 {
				entry.Error("request failed")
			} else {
				entry.Info("request processed")
			}
			return nil
		}
	}
}
