package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ougirez/ayudas/internal/pkg/constants"
	"github.com/ougirez/ayudas/internal/pkg/logger"
	"github.com/ougirez/ayudas/internal/pkg/metrics"
)

// RequestIDMiddleware reuses the caller's request id or makes one, and puts it
// into the response headers and the request logger.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Request().Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(constants.HeaderRequestID, id)
		ctx.Set(constants.CtxKeyRequestID, id)

		reqCtx := logger.WithFields(ctx.Request().Context(), zap.String(constants.CtxKeyRequestID, id))
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}

func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		if err != nil {
			// the error handler has not written the response yet
			ctx.Error(err)
			status = ctx.Response().Status
		}
		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, ctx.Request().Method, status, time.Since(start))

		return nil
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			logger.L(ctx.Request().Context()).Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
