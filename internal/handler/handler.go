package handler

import (
	"net/http"
	"strconv"

	md "github.com/bookvault/borrowing-service/pkg/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/pkg/auth"
	"github.com/bookvault/borrowing-service/pkg/validate"
)

type Handler struct {
	svc BorrowingService
	log *zap.Logger
}

func New(svc BorrowingService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
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
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	// gateway redirects land here without a token
	base.GET("/api/v1/payments/success", h.PaymentSuccess)
	base.GET("/api/v1/payments/cancel", h.PaymentCancel)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.JwtAuthentication,
	)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:bookUid", h.GetBook)
	api.POST("/books", h.CreateBook)
	api.PUT("/books/:bookUid", h.UpdateBook)
	api.DELETE("/books/:bookUid", h.DeleteBook)

	api.GET("/borrowings", h.ListBorrowings)
	api.POST("/borrowings", h.CreateBorrowing)
	api.GET("/borrowings/:borrowingUid", h.GetBorrowing)
	api.POST("/borrowings/:borrowingUid/return", h.ReturnBorrowing)

	api.GET("/payments", h.ListPayments)
	api.POST("/payments", h.CreatePayment)
	api.GET("/payments/:paymentUid", h.GetPayment)
	api.POST("/payments/:paymentUid/session", h.CreateSession)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// toHTTPError maps service sentinels onto client-visible responses.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrBookUnavailable),
		errors.Is(err, errs.ErrAlreadyReturned),
		errors.Is(err, errs.ErrInvalidPaymentType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrDuplicatePayment):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func currentUser(c echo.Context) (auth.User, error) {
	user, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return auth.User{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return user, nil
}

func (h *Handler) CreateBorrowing(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.CreateBorrowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Username = user.Username
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	borrowing, err := h.svc.CreateBorrowing(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, borrowing)
}

func (h *Handler) ListBorrowings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := model.BorrowingsFilter{
		Username:   user.Username,
		IsAdmin:    user.IsAdmin(),
		FilterUser: c.QueryParam("user_id"),
	}
	if isActiveParam := c.QueryParam("is_active"); isActiveParam != "" {
		isActive, err := strconv.ParseBool(isActiveParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "is_active is invalid")
		}
		filter.IsActive = &isActive
	}

	borrowings, err := h.svc.ListBorrowings(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, borrowings)
}

func (h *Handler) GetBorrowing(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	borrowingUid := c.Param("borrowingUid")
	if borrowingUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "borrowingUid is empty")
	}
	borrowing, err := h.svc.GetBorrowing(c.Request().Context(), user, borrowingUid)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, borrowing)
}

func (h *Handler) ReturnBorrowing(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	borrowingUid := c.Param("borrowingUid")
	if borrowingUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "borrowingUid is empty")
	}
	resp, err := h.svc.ReturnBorrowing(c.Request().Context(), user, borrowingUid)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
