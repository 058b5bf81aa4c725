package middleware

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/eventosu/internal/dto"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		_ = c.JSON(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
			Message: "validation failed",
			Fields:  verr.Fields,
		})
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
