package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/clearbridge-dev/payments/internal/domain/repository"
)

// GatewayConfigHandler serves gateway credential management. Every read path
// goes through the masked view; the full secret key never appears in a
// response.
type GatewayConfigHandler struct {
	configRepo repository.GatewayConfigRepository
	logger     *zap.Logger
}

func NewGatewayConfigHandler(configRepo repository.GatewayConfigRepository, logger *zap.Logger) *GatewayConfigHandler {
	return &GatewayConfigHandler{
		configRepo: configRepo,
		logger:     logger,
	}
}

type saveConfigRequest struct {
	PublicKey string `json:"public_key" validate:"required"`
	SecretKey string `json:"secret_key" validate:"required"`
	Active    *bool  `json:"active"`
}

// GetPublicConfig handles GET /api/v1/config. Public: exposes only the
// public key and whether payments are enabled.
func (h *GatewayConfigHandler) GetPublicConfig(c echo.Context) error {
	cfg, err := h.configRepo.GetActive(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to load gateway config", zap.Error(err))
		return writeError(c, err)
	}
	if cfg == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"public_key": "",
			"is_active":  false,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"public_key": cfg.PublicKey,
		"is_active":  cfg.IsActive,
	})
}

// GetConfig handles GET /api/v1/admin/config. Admin-only; the secret key is
// masked to its trailing-4-character suffix.
func (h *GatewayConfigHandler) GetConfig(c echo.Context) error {
	cfg, err := h.configRepo.GetActive(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to load gateway config", zap.Error(err))
		return writeError(c, err)
	}
	if cfg == nil {
		return c.JSON(http.StatusOK, echo.Map{"configured": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"configured": true,
		"config":     cfg.Masked(),
	})
}

// SaveConfig handles POST /api/v1/admin/config
func (h *GatewayConfigHandler) SaveConfig(c echo.Context) error {
	var req saveConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "public_key and secret_key are required"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	cfg, err := h.configRepo.Save(c.Request().Context(), req.PublicKey, req.SecretKey, active)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"configured": true,
		"config":     cfg.Masked(),
	})
}
