package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/platform/auth"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.stats, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
}

func (h *Handler) stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute dashboard")
	}
	return c.JSON(http.StatusOK, stats)
}
