package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/labstack/echo/v4"
)

const (
	codeInvalidParameters       = "INVALID_PARAMETERS"
	codeInvalidSortOrder        = "INVALID_SORT_ORDER"
	codeInvalidDate             = "INVALID_DATE"
	codeInternalServerError     = "INTERNAL_SERVER_ERROR"
	codeAdminTokenNotConfigured = "ADMIN_TOKEN_NOT_CONFIGURED"
	codeUnauthorized            = "UNAUTHORIZED"
	codeDatabaseUnavailable     = "DATABASE_UNAVAILABLE"
	codeNotFound                = "NOT_FOUND"
)

// statusAndCode maps an error to its HTTP status and error code. Anything not
// caused by the caller is an internal error.
func statusAndCode(err error) (int, string) {
	switch errors.CodeOf(err) {
	case errors.ERR_INVALID_ARGUMENT:
		return http.StatusBadRequest, codeInvalidParameters
	case errors.ERR_INVALID_SORT_ORDER:
		return http.StatusBadRequest, codeInvalidSortOrder
	case errors.ERR_INVALID_DATE:
		return http.StatusBadRequest, codeInvalidDate
	case errors.ERR_UNAUTHORIZED:
		return http.StatusUnauthorized, codeUnauthorized
	default:
		return http.StatusInternalServerError, codeInternalServerError
	}
}

// sendError writes the error envelope. Client errors carry their own message,
// server errors get message and the detail only goes to the log.
func (h *HTTP) sendError(c echo.Context, err error, message string) error {
	status, code := statusAndCode(err)

	if status < http.StatusInternalServerError {
		var e *errors.Error
		if errors.As(err, &e) {
			message = e.Message()
		}
	} else {
		h.logger.Errorf("[Fractionalize_http] %s %s: %v", c.Request().Method, c.Path(), err)
	}

	return c.JSON(status, &errorResponse{
		Status:  statusError,
		Message: message,
		Code:    code,
	})
}

// httpErrorHandler renders echo errors, such as unknown routes, in the same
// envelope as handler errors.
func (h *HTTP) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = http.StatusText(status)
	} else {
		h.logger.Errorf("[Fractionalize_http] %s %s: %v", c.Request().Method, c.Path(), err)
	}

	code := codeInternalServerError

	switch {
	case status == http.StatusNotFound:
		code = codeNotFound
	case status == http.StatusUnauthorized:
		code = codeUnauthorized
	case status < http.StatusInternalServerError:
		code = codeInvalidParameters
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, &errorResponse{Status: statusError, Message: message, Code: code})
	}

	if writeErr != nil {
		h.logger.Warnf("[Fractionalize_http] failed to write error response: %v", writeErr)
	}
}
