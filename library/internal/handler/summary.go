package handler

import (
	"net/http"

	"github.com/Astemirdum/smart-library/library/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GenerateSummary godoc
// @Summary AI summary of a book, generated once and stored
// @Tags ai
// @Security BearerAuth
// @Param request body model.SummaryRequest true "book"
// @Success 200 {object} model.SummaryResponse
// @Failure 429 {object} errs.ErrorResponse
// @Failure 502 {object} errs.ErrorResponse
// @Router /api/v1/ai/summary [post]
func (h *Handler) GenerateSummary(c echo.Context) error {
	var req model.SummaryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	resp, err := h.librarySvc.GenerateSummary(c.Request().Context(), uuid.MustParse(req.BookID))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
