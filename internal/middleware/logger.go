package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/logging"
)

const ctxLogger = "logger"

// RequestLogger puts a per-request entry carrying the request id into the
// context and logs one line per finished request. It must run after echo's
// RequestID middleware.
func RequestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	inject := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			c.Set(ctxLogger, log.WithField(logging.FldRequestID, id))
			return next(c)
		}
	}
	logged := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := Logger(c, log).WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if id, ok := UserID(c); ok {
				entry = entry.WithField(logging.FldUser, id)
			}
			switch {
			case v.Error != nil:
				entry.WithError(v.Error).Error("request failed")
			case v.Status >= 500:
				entry.Error("request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return inject(logged(next))
	}
}

// Logger returns the request scoped entry, or fallback outside a request.
func Logger(c echo.Context, fallback *logrus.Entry) *logrus.Entry {
	if l, ok := c.Get(ctxLogger).(*logrus.Entry); ok {
		return l
	}
	return fallback
}
