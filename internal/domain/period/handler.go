package period

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler lets clients resolve and navigate ranges without reimplementing
// the calendar rules.
type Handler struct {
	now Clock
}

func NewHandler(now Clock) *Handler {
	return &Handler{now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/periods/resolve", h.Resolve)
}

func (h *Handler) Resolve(c echo.Context) error {
	r, err := FromContext(c, h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, NewResponse(r))
}
