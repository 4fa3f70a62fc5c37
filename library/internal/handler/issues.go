package handler

import (
	"net/http"

	"github.com/Astemirdum/smart-library/library/internal/model"
	md "github.com/Astemirdum/smart-library/pkg/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// IssueBook godoc
// @Summary issue a book to the caller
// @Tags issues
// @Security BearerAuth
// @Param request body model.IssueRequest true "book"
// @Success 201 {object} model.Issue
// @Failure 404 {object} errs.ErrorResponse
// @Failure 409 {object} errs.ErrorResponse
// @Router /api/v1/issues [post]
func (h *Handler) IssueBook(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.IssueRequest
	if err = bindValid(c, &req); err != nil {
		return err
	}
	issue, err := h.librarySvc.IssueBook(c.Request().Context(), actor, uuid.MustParse(req.BookID))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, issue)
}

// ReturnBook godoc
// @Summary return an issued book; owner or admin
// @Tags issues
// @Security BearerAuth
// @Param id path string true "issue id"
// @Success 200 {object} model.Issue
// @Failure 403 {object} errs.ErrorResponse
// @Failure 409 {object} errs.ErrorResponse
// @Router /api/v1/issues/{id}/return [patch]
func (h *Handler) ReturnBook(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	issue, err := h.librarySvc.ReturnBook(c.Request().Context(), actor, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issue)
}

func (h *Handler) ListIssues(c echo.Context) error {
	actor, err := md.GetPrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	issues, err := h.librarySvc.ListIssues(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issues)
}

func (h *Handler) PayPenalty(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	issue, err := h.librarySvc.PayPenalty(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, issue)
}
