package handler

import (
	"errors"
	"net/http"

	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrUnauthenticated), errors.Is(kind, service.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func kindName(kind error) string {
	switch kind {
	case service.ErrUnauthenticated:
		return "Unauthenticated"
	case service.ErrValidationFailed:
		return "ValidationFailed"
	case service.ErrPaymentInitiationFailed:
		return "PaymentInitiationFailed"
	case service.ErrUnexpectedResponseShape:
		return "UnexpectedResponseShape"
	case service.ErrResourceNotFound:
		return "ResourceNotFound"
	case service.ErrAuthFailed:
		return "AuthFailed"
	case service.ErrInvalidTransition:
		return "InvalidTransition"
	case service.ErrBackend:
		return "BackendError"
	}
	return ""
}

// HTTPErrorHandler renders every failure as an inline {"error": ...} message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorBody{Error: http.StatusText(http.StatusInternalServerError)}

	var uErr *service.UserError
	var hErr *echo.HTTPError
	switch {
	case errors.As(err, &uErr):
		code = statusFor(uErr.Kind)
		body = errorBody{Error: uErr.Message, Kind: kindName(uErr.Kind), Fields: uErr.Fields}
	case errors.As(err, &hErr):
		code = hErr.Code
		if msg, ok := hErr.Message.(string); ok {
			body.Error = msg
		} else {
			body.Error = http.StatusText(code)
		}
	default:
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
