package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domainErrors "github.com/clearbridge-dev/payments/internal/domain/errors"
	"github.com/clearbridge-dev/payments/internal/domain/provider"
)

// writeError maps domain and gateway errors to JSON responses. Gateway
// timeouts and outages carry a retry hint: a pending transaction plus a
// timeout is not proof of failure.
func writeError(c echo.Context, err error) error {
	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": validationErr.Error(),
			"code":  domainErrors.ErrTypeValidation,
		})
	}

	var notConfiguredErr *domainErrors.NotConfiguredError
	if errors.As(err, &notConfiguredErr) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "Payments are temporarily unavailable, please contact support",
			"code":  domainErrors.ErrTypeNotConfigured,
		})
	}

	var notFoundErr *domainErrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Transaction not found",
			"code":  domainErrors.ErrTypeNotFound,
		})
	}

	var forbiddenErr *domainErrors.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "Forbidden",
			"code":  domainErrors.ErrTypeForbidden,
		})
	}

	var providerErr *provider.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Kind {
		case provider.ErrKindTimeout, provider.ErrKindUnavailable:
			return c.JSON(http.StatusBadGateway, echo.Map{
				"error": "Payment gateway did not respond, please try again shortly",
				"code":  "GATEWAY_" + strings.ToUpper(string(providerErr.Kind)),
				"retry": true,
			})
		default:
			return c.JSON(http.StatusBadGateway, echo.Map{
				"error": providerErr.Message,
				"code":  "GATEWAY_REJECTED",
				"retry": false,
			})
		}
	}

	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "Internal server error",
		"code":  "INTERNAL",
	})
}
