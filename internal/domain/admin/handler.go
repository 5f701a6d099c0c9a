package admin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/clinic/backoffice/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – every clinic role
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleReception, auth.RoleProfessional, auth.RoleFinance))
	readGroup.GET("/settings/company", h.GetCompany)
	readGroup.GET("/settings/rooms", h.ListRooms)

	// Write endpoints – admin only
	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	writeGroup.PUT("/settings/company", h.UpdateCompany)
	writeGroup.POST("/settings/rooms", h.CreateRoom)
	writeGroup.PATCH("/settings/rooms/:id", h.UpdateRoom)

	balanceGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleFinance))
	balanceGroup.PUT("/settings/opening-balance", h.SetOpeningBalance)
}

// -- Company --

func (h *Handler) GetCompany(c echo.Context) error {
	cfg, err := h.svc.Company(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) UpdateCompany(c echo.Context) error {
	var cfg CompanyConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateCompany(c.Request().Context(), &cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

type balanceRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (h *Handler) SetOpeningBalance(c echo.Context) error {
	var req balanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Amount == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount is required")
	}
	if err := h.svc.SetOpeningBalance(c.Request().Context(), *req.Amount); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]decimal.Decimal{"opening_balance": *req.Amount})
}

// -- Rooms --

func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *Handler) CreateRoom(c echo.Context) error {
	var r Room
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRoom(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

type roomUpdate struct {
	Active bool `json:"active"`
}

func (h *Handler) UpdateRoom(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req roomUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetRoomActive(c.Request().Context(), id, req.Active); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
