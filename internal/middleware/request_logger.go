package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// リクエストごとのアクセスログ
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			buyerID := ""
			if v, ok := c.Get(CtxBuyerIDKey).(string); ok {
				buyerID = v
			}

			logger.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Str("buyer_id", buyerID).
				Dur("latency", time.Since(start)).
				Msg("request completed")

			return nil
		}
	}
}
