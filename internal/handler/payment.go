package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookvault/borrowing-service/internal/model"
)

func (h *Handler) ListPayments(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	payments, err := h.svc.ListPayments(c.Request().Context(), user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) GetPayment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	payment, err := h.svc.GetPayment(c.Request().Context(), user, c.Param("paymentUid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *Handler) CreatePayment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	payment, err := h.svc.CreatePayment(c.Request().Context(), user, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *Handler) CreateSession(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	session, err := h.svc.CreateSession(c.Request().Context(), user, c.Param("paymentUid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) PaymentSuccess(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Session ID not found.")
	}
	if err := h.svc.PaymentSuccess(c.Request().Context(), sessionID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment was successful!"})
}

func (h *Handler) PaymentCancel(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Session ID not found.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Payment was not successful and can be paid later. The session is available for 24h.",
	})
}
