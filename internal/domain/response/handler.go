package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/platform/auth"
)

// Handler exposes the response HTTP API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.PUT("/participants/:key/responses", h.submit, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.GET("/participants/:key/responses", h.list, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
	g.GET("/participants/:key/summary", h.summary, auth.RequireRole(auth.RoleInvestigator, auth.RoleRecruiter))
}

func (h *Handler) submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	err := h.svc.SubmitBatch(ctx, auth.EmailFromContext(ctx), c.Param("key"), req)
	if err != nil {
		switch {
		case IsValidationError(err):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrNoResponsesSubmitted):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, participant.ErrNotFound), errors.Is(err, ErrEditorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		var ruleErr *catalog.InvalidRuleDefinitionError
		if errors.As(err, &ruleErr) {
			return echo.NewHTTPError(http.StatusInternalServerError, "question has a malformed validation rule")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store responses")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) list(c echo.Context) error {
	items, err := h.svc.ListByParticipant(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list responses")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) summary(c echo.Context) error {
	sum, err := h.svc.Summarize(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "participant not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to summarize responses")
	}
	return c.JSON(http.StatusOK, sum)
}
