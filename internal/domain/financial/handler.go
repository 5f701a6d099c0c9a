package financial

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/platform/auth"
	"github.com/clinic/backoffice/pkg/pagination"
)

type Handler struct {
	svc *Service
	now period.Clock
}

func NewHandler(svc *Service, now period.Clock) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleFinance, auth.RoleReception))
	readGroup.GET("/entries", h.ListEntries)
	readGroup.GET("/entries/:id", h.GetEntry)
	readGroup.GET("/categories", h.GetCategories)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleFinance))
	writeGroup.POST("/entries", h.CreateEntry)
	writeGroup.PUT("/entries/:id", h.UpdateEntry)
	writeGroup.DELETE("/entries/:id", h.DeleteEntry)
	writeGroup.POST("/categories", h.AddCategory)
	writeGroup.POST("/categories/rename", h.RenameCategory)
	writeGroup.DELETE("/categories", h.RemoveCategory)

	reportGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleFinance))
	reportGroup.GET("/reports/cashflow", h.CashFlow)
	reportGroup.GET("/reports/dre", h.IncomeStatement)
}

func entryError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "entry not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func categoryError(err error) error {
	if errors.Is(err, ErrCategoryRejected) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// ===== Entries =====

func (h *Handler) CreateEntry(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateEntry(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEntry(c.Request().Context(), id)
	if err != nil {
		return entryError(err)
	}
	return c.JSON(http.StatusOK, e)
}

// ListEntries pages through all entries, or returns every entry of a period
// when one is given.
func (h *Handler) ListEntries(c echo.Context) error {
	if c.QueryParam("period") != "" || c.QueryParam("date") != "" {
		r, err := period.FromContext(c, h.now())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		entries, err := h.svc.EntriesIn(c.Request().Context(), r)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"period": period.NewResponse(r),
			"data":   entries,
		})
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListEntries(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = id
	if err := h.svc.UpdateEntry(c.Request().Context(), &e); err != nil {
		if errors.Is(err, ErrNotFound) {
			return entryError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteEntry(c.Request().Context(), id); err != nil {
		return entryError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ===== Categories =====

type categoryRequest struct {
	Type    EntryType `json:"type"`
	Name    string    `json:"name"`
	NewName string    `json:"new_name"`
}

type categoryResponse struct {
	Registry     Registry `json:"registry"`
	MovedEntries int      `json:"moved_entries"`
}

func (h *Handler) GetCategories(c echo.Context) error {
	reg, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reg)
}

func (h *Handler) AddCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, err := h.svc.AddCategory(c.Request().Context(), req.Type, req.Name)
	if err != nil {
		return categoryError(err)
	}
	return c.JSON(http.StatusCreated, categoryResponse{Registry: reg})
}

func (h *Handler) RenameCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, moved, err := h.svc.RenameCategory(c.Request().Context(), req.Type, req.Name, req.NewName)
	if err != nil {
		return categoryError(err)
	}
	return c.JSON(http.StatusOK, categoryResponse{Registry: reg, MovedEntries: moved})
}

// RemoveCategory takes type and name from the query string since names may
// contain slashes.
func (h *Handler) RemoveCategory(c echo.Context) error {
	t := EntryType(c.QueryParam("type"))
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	reg, moved, err := h.svc.RemoveCategory(c.Request().Context(), t, name)
	if err != nil {
		return categoryError(err)
	}
	return c.JSON(http.StatusOK, categoryResponse{Registry: reg, MovedEntries: moved})
}

// ===== Reports =====

func (h *Handler) CashFlow(c echo.Context) error {
	r, err := period.FromContext(c, h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.svc.CashFlow(c.Request().Context(), r)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"period":    period.NewResponse(r),
		"statement": st,
	})
}

func (h *Handler) IncomeStatement(c echo.Context) error {
	r, err := period.FromContext(c, h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.svc.IncomeStatement(c.Request().Context(), r)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"period":    period.NewResponse(r),
		"statement": st,
	})
}
