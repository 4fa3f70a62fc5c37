package handler

import (
	"net/http"

	md "github.com/Astemirdum/smart-library/pkg/middleware"
	"github.com/labstack/echo/v4"
)

func (h *Handler) Stats(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	stats, err := h.librarySvc.Stats(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) OverdueIssues(c echo.Context) error {
	issues, err := h.librarySvc.OverdueIssues(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issues)
}

func (h *Handler) RecentIssues(c echo.Context) error {
	issues, err := h.librarySvc.RecentIssues(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issues)
}

func (h *Handler) MyRecentIssues(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	issues, err := h.librarySvc.MyRecentIssues(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issues)
}

// DueAlerts godoc
// @Summary caller's open issues that are due soon or overdue
// @Tags dashboard
// @Security BearerAuth
// @Success 200 {object} model.OverdueAlerts
// @Router /api/v1/dashboard/due-alerts [get]
func (h *Handler) DueAlerts(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	alerts, err := h.librarySvc.ComputeOverdueAlerts(c.Request().Context(), actor, h.now())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, alerts)
}
