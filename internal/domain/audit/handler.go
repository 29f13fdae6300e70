package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/platform/auth"
	"github.com/datalab/datalab/pkg/pagination"
)

// Handler exposes the audit trail read API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit", h.list, auth.RequireRole(auth.RoleAdmin, auth.RoleInvestigator))
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	f := Filter{
		Actor:  c.QueryParam("actor"),
		Action: c.QueryParam("action"),
	}
	if raw := c.QueryParam("participant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid participant_id")
		}
		f.ParticipantID = &id
	}

	entries, err := h.svc.List(c.Request().Context(), f, p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit entries")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, len(entries), p.Limit, p.Offset))
}
