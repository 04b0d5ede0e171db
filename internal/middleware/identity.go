package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identity names the caller for rate limit and cache keys: the user id when
// a token was validated, "guest" otherwise.
func identity(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "guest"
}
