package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes the payload as-is. Success shapes are a
// compatibility contract and are never wrapped in an envelope.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes a failure as {"detail": ...} with the given status.
func ErrorResponse(c echo.Context, status int, detail interface{}) error {
	return c.JSON(status, ErrorBody{Detail: detail})
}

// BadRequestResponse writes a 400 failure.
func BadRequestResponse(c echo.Context, detail interface{}) error {
	return ErrorResponse(c, http.StatusBadRequest, detail)
}

// InternalServerErrorResponse writes a 500 failure.
func InternalServerErrorResponse(c echo.Context) error {
	return ErrorResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes an application error at its status.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr.Status, appErr.Message)
	}
	return InternalServerErrorResponse(c)
}
