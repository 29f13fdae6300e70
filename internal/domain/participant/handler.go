package participant

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/platform/auth"
	"github.com/datalab/datalab/pkg/pagination"
)

// Handler exposes the participant HTTP API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/participants", h.create, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.GET("/participants", h.list, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.GET("/participants/:key", h.get, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.DELETE("/participants/:id", h.delete, auth.RequireRole(auth.RoleInvestigator))
	g.POST("/participants/:id/not-completable", h.markNotCompletable, auth.RequireRole(auth.RoleInvestigator))
	g.POST("/participants/:id/reopen", h.reopen, auth.RequireRole(auth.RoleInvestigator))
}

func (h *Handler) create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	if req.RecruiterID == 0 {
		req.RecruiterID = auth.UserIDFromContext(ctx)
	}
	p, err := h.svc.Create(ctx, auth.EmailFromContext(ctx), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{}
	if raw := c.QueryParam("group"); raw != "" {
		g, ok := catalog.ParseGroup(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown group")
		}
		f.Group = g
	}
	if raw := c.QueryParam("status"); raw != "" {
		f.Status = Status(raw)
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list participants")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load participant")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid participant id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, auth.EmailFromContext(ctx), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete participant")
	}
	return c.NoContent(http.StatusNoContent)
}

type notCompletableRequest struct {
	Justification string `json:"justification"`
}

func (h *Handler) markNotCompletable(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid participant id")
	}
	var req notCompletableRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	p, err := h.svc.MarkNotCompletable(ctx, auth.EmailFromContext(ctx), id, req.Justification)
	if err != nil {
		switch {
		case errors.Is(err, ErrJustificationRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update participant")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) reopen(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid participant id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.Reopen(ctx, auth.EmailFromContext(ctx), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reopen participant")
	}
	return c.JSON(http.StatusOK, p)
}
