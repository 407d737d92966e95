package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/anonto42/nano-social/backend/pkg/ratelimit"
)

// RateLimit lets an authenticated user perform action once per limiter
// window. It must run after JWTAuthMiddleware. Redis failures let the request
// through, and a request that fails does not use up the window.
func RateLimit(limiter *ratelimit.Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*models.JwtCustomClaims)
			if !ok || claims == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			allowed, err := limiter.Allow(ctx, claims.UserID, action)
			if err != nil {
				logger.Warn("rate limit check failed", zap.String("action", action), zap.Error(err))
				return next(c)
			}
			if !allowed {
				if ttl, err := limiter.RetryAfter(ctx, claims.UserID, action); err == nil && ttl > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, apperror.ErrRateLimited.Error())
			}

			if err := next(c); err != nil {
				if clearErr := limiter.Clear(ctx, claims.UserID, action); clearErr != nil {
					logger.Warn("rate limit reset failed", zap.String("action", action), zap.Error(clearErr))
				}
				return err
			}
			return nil
		}
	}
}
