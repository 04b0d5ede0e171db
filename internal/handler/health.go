package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers load balancer and systemd watchdog health checks.
type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler { return &HealthHandler{db: db} }

// Health returns "ok" when the database answers a ping within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
