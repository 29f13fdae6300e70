package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/platform/auth"
)

// Handler exposes dataset downloads.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/export", h.export, auth.RequireRole(auth.RoleInvestigator))
}

func (h *Handler) export(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	coded := c.QueryParam("coded") == "true"

	ctx := c.Request().Context()
	actor := auth.EmailFromContext(ctx)
	stamp := time.Now().Format("20060102-150405")

	switch format {
	case "csv":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="datalab-%s.csv"`, stamp))
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return h.svc.WriteCSV(ctx, actor, c.Response(), coded)
	case "xlsx":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="datalab-%s.xlsx"`, stamp))
		c.Response().Header().Set(echo.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Response().WriteHeader(http.StatusOK)
		return h.svc.WriteXLSX(ctx, actor, c.Response(), coded)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or xlsx")
}
