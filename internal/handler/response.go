package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/verdandi/internal/domain"
)

// Response is the uniform JSON envelope for every API endpoint.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error details of a failed request.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status code.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// OK writes a success envelope with the given status.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

// Error writes an error envelope derived from a domain error. Internal
// errors are logged with their cause and surfaced as a generic message.
func Error(c echo.Context, logger *slog.Logger, err error) error {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)

	if code == domain.EINTERNAL {
		logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"op", domain.ErrorOp(err),
			"error", err,
		)
	}

	body := &ErrorBody{Code: code, Message: message}
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		body.Fields = fields
	}
	return c.JSON(ErrorCodeToHTTPStatus(code), Response{Success: false, Error: body})
}
