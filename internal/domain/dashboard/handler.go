package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/platform/auth"
)

type Handler struct {
	svc *Service
	now period.Clock
}

func NewHandler(svc *Service, now period.Clock) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleReception, auth.RoleFinance))
	g.GET("/dashboard", h.Overview)
	g.GET("/dashboard/metrics", h.Metrics)
}

func (h *Handler) Metrics(c echo.Context) error {
	m, err := h.svc.Metrics(c.Request().Context(), h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Overview(c echo.Context) error {
	ov, err := h.svc.Overview(c.Request().Context(), h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ov)
}
