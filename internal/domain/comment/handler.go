package comment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/platform/auth"
)

// Handler exposes the comment HTTP API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/participants/:key/comments", h.list, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.POST("/participants/:key/comments", h.add, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
}

type addRequest struct {
	Body string `json:"body"`
}

func (h *Handler) add(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	created, err := h.svc.Add(ctx, auth.EmailFromContext(ctx), c.Param("key"), req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBody):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, participant.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add comment")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c echo.Context) error {
	comments, err := h.svc.ListByParticipant(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list comments")
	}
	return c.JSON(http.StatusOK, comments)
}
