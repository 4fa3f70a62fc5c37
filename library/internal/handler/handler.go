package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	md "github.com/Astemirdum/smart-library/pkg/middleware"
	"github.com/Astemirdum/smart-library/pkg/validate"
	_ "github.com/Astemirdum/smart-library/swagger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	librarySvc LibraryService
	authSvc    AuthService
	tokens     md.TokenParser
	now        func() time.Time
	log        *zap.Logger
}

func New(librarySvc LibraryService, authSvc AuthService, tokens md.TokenParser, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		authSvc:    authSvc,
		tokens:     tokens,
		now:        time.Now,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	authn := md.JwtAuthentication(h.tokens, h.authSvc)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me, authn)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook, authn, md.AdminOnly)
	api.PUT("/books/:id", h.UpdateBook, authn, md.AdminOnly)
	api.DELETE("/books/:id", h.DeleteBook, authn, md.AdminOnly)

	issues := api.Group("/issues", authn)
	issues.POST("", h.IssueBook)
	issues.PATCH("/:id/return", h.ReturnBook)
	issues.GET("/my", h.ListIssues)
	issues.PATCH("/:id/penalty/pay", h.PayPenalty, md.AdminOnly)

	dashboard := api.Group("/dashboard", authn)
	dashboard.GET("/stats", h.Stats)
	dashboard.GET("/overdue", h.OverdueIssues, md.AdminOnly)
	dashboard.GET("/recent-issues", h.RecentIssues, md.AdminOnly)
	dashboard.GET("/my-recent-issues", h.MyRecentIssues)
	dashboard.GET("/due-alerts", h.DueAlerts)

	api.POST("/ai/summary", h.GenerateSummary, authn)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// fail maps a service error onto the response status.
func (h *Handler) fail(c echo.Context, err error) error {
	var upErr *errs.UpstreamError
	switch {
	case errors.As(err, &upErr):
		code := http.StatusBadGateway
		if upErr.Kind == errs.UpstreamRateLimited {
			code = http.StatusTooManyRequests
		}
		resp := errs.ErrorResponse{Message: upErr.Message()}
		if upErr.Retryable {
			resp.RetryAfter = int(upErr.RetryAfter / time.Second)
			c.Response().Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
		}
		h.log.Warn("upstream", zap.String("kind", string(upErr.Kind)), zap.Error(upErr))
		return echo.NewHTTPError(code, resp)
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	h.log.Error("internal", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}
