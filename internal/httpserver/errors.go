package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
)

const internalMessage = "Erro interno do servidor"

// statusOf maps service sentinels to HTTP status codes. Zero means the error
// is unexpected and belongs to the central handler.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrTokenNotRegistered),
		errors.Is(err, service.ErrTokenInvalidOrExpired):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrPrincipalGone):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return 0
	}
}

// respond logs a failed handler call and converts expected errors into
// HTTP errors. Anything else is passed through untouched.
func respond(l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code == 0 {
		l.Error(event, "status", 500, "error", err)
		return err
	}
	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, event, msg string, err error) error {
	l.Warn(event, "status", 400, "reason", msg, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// HTTPErrorHandler writes {error[, message]} bodies. Persistence errors that
// reach it are mapped to 409/404; everything else is a 500 whose detail is
// shown only in development.
func HTTPErrorHandler(development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := transport.ErrorResponse{Error: internalMessage}

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			code = he.Code
			body.Error = messageOf(he)
		case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
			code = http.StatusConflict
			body.Error = "Registro duplicado ou referenciado por outros dados"
		case errors.Is(err, gorm.ErrRecordNotFound):
			code = http.StatusNotFound
			body.Error = "Registro não encontrado"
		default:
			if development {
				body.Message = err.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			c.Logger().Error(werr)
		}
	}
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}
