package httpimpl

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "bearer "

// adminAuth gates the admin routes on a bearer token equal to the configured
// admin token. An empty configured token rejects every request with 500, a
// missing or wrong caller token with 401. Rejected requests never reach the
// handler, so no store access happens.
func (h *HTTP) adminAuth(adminToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminToken == "" {
				h.logger.Errorf("[Fractionalize_http] admin request rejected, ADMIN_TOKEN is not configured")

				return c.JSON(http.StatusInternalServerError, &errorResponse{
					Status:  statusError,
					Message: "Admin token not configured",
					Code:    codeAdminTokenNotConfigured,
				})
			}

			token := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				h.logger.Warnf("[Fractionalize_http] unauthorized admin request from %s to %s", c.RealIP(), c.Path())

				return c.JSON(http.StatusUnauthorized, &errorResponse{
					Status:  statusError,
					Message: "Unauthorized: Invalid or missing admin token",
					Code:    codeUnauthorized,
				})
			}

			return next(c)
		}
	}
}

// extractBearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is missing or uses another scheme. The scheme
// is matched case-insensitively.
func extractBearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}
