package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearbridge-dev/payments/internal/middleware/auth"
	"github.com/clearbridge-dev/payments/internal/usecase"
)

type PaymentHandler struct {
	service         *usecase.PaymentService
	defaultCurrency string
	logger          *zap.Logger
}

func NewPaymentHandler(service *usecase.PaymentService, defaultCurrency string, logger *zap.Logger) *PaymentHandler {
	if defaultCurrency == "" {
		defaultCurrency = "NGN"
	}
	return &PaymentHandler{
		service:         service,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

type initializePaymentRequest struct {
	Email       string          `json:"email" validate:"required,email"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"omitempty,len=3"`
	CallbackURL string          `json:"callback_url" validate:"omitempty,url"`
}

type verifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// InitializePayment handles POST /api/v1/payments/initialize
func (h *PaymentHandler) InitializePayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and amount are required"})
	}
	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	h.logger.Info("initializing payment",
		zap.String("user_id", user.UserID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency))

	result, err := h.service.InitializePayment(
		c.Request().Context(),
		user.UserID,
		req.Email,
		req.Amount,
		req.Currency,
		req.CallbackURL,
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// VerifyPayment handles POST /api/v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req verifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference is required"})
	}

	result, err := h.service.VerifyPayment(c.Request().Context(), req.Reference, user.UserID, user.IsAdmin())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetUserTransactions handles GET /api/v1/payments
func (h *PaymentHandler) GetUserTransactions(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	txns, err := h.service.ListUserTransactions(c.Request().Context(), user.UserID)
	if err != nil {
		h.logger.Error("failed to list user transactions",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"transactions": txns})
}

// GetAllTransactions handles GET /api/v1/admin/payments
func (h *PaymentHandler) GetAllTransactions(c echo.Context) error {
	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit parameter"})
		}
		limit = parsed
	}

	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset parameter"})
		}
		offset = parsed
	}

	txns, err := h.service.ListAllTransactions(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"transactions": txns})
}
