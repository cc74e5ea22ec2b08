package presenter

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hhyyy9/logistics-platform/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	zap.L().Debug("bad request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	zap.L().Debug("bad request", zap.String("message", msg))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func InternalError(c echo.Context, err error) error {
	zap.L().Error("internal error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// Error maps the domain error taxonomy onto status codes.
func Error(c echo.Context, err error) error {
	var validation domain.ValidationError
	var rejected *domain.SubmissionRejectedError
	var configuration domain.ConfigurationError

	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "validation",
			Field: validation.Field,
		})
	case errors.As(err, &configuration):
		zap.L().Error("configuration error", zap.String("parameter", configuration.Parameter))
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: "configuration"})
	case errors.As(err, &rejected):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   err.Error(),
			Kind:    "rejected",
			Message: rejected.Message,
		})
	case errors.Is(err, domain.ErrNotConnected):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: "not_connected"})
	default:
		return InternalError(c, err)
	}
}
