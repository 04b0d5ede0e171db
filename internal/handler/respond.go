package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
)

const (
	dbTimeout   = 5 * time.Second
	msgInternal = "Internal server error"
	msgMissing  = "Missing required fields"
	msgBadBody  = "Invalid request body"
)

// messages are the client texts used for the store conditions of one route.
type messages struct {
	notFound string
	conflict string
	badRef   string
}

// fail writes the response for err. Validation problems and store conditions
// get their status and message; anything else is logged and reported as a
// bare 500.
func fail(c echo.Context, log *logrus.Entry, err error, m messages) error {
	var ve *service.ValidationError
	var unknown *repository.UnknownArtistError
	switch {
	case errors.As(err, &ve):
		return bad(c, ve.Msg)
	case errors.As(err, &unknown):
		return bad(c, fmt.Sprintf("Unknown artist ID: %d", unknown.ID))
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": orDefault(m.notFound, "Not found")})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": orDefault(m.conflict, "Already exists")})
	case errors.Is(err, repository.ErrInvalidReference):
		return bad(c, orDefault(m.badRef, "Referenced record does not exist"))
	case errors.Is(err, repository.ErrOutOfRange):
		return bad(c, "Value out of range")
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	middleware.Logger(c, log).WithError(err).WithField("route", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
}

func bad(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// pathID reads a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// optString trims s and maps empty to nil.
func optString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ErrorHandler renders errors returned from handlers and middleware (404 for
// unknown routes, 413 from the body limit, ...) in the {"error": ...} shape
// used by every route.
func ErrorHandler(log *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else {
			middleware.Logger(c, log).WithError(err).Error("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			middleware.Logger(c, log).WithError(err).Warn("write error response")
		}
	}
}
