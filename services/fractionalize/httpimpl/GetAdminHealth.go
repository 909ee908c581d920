package httpimpl

import (
	"net/http"
	"time"

	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"github.com/labstack/echo/v4"
)

func (h *HTTP) GetAdminHealth(c echo.Context) (err error) {
	ctx, _, deferFn := tracing.Start(c.Request().Context(), "GetAdminHealth_http",
		tracing.WithParentStat(FractionalizeStat),
	)

	defer func() {
		deferFn(err)
	}()

	if err = h.repository.Ping(ctx); err != nil {
		h.logger.Warnf("[GetAdminHealth_http] database ping failed: %v", err)

		return c.JSON(http.StatusServiceUnavailable, &errorResponse{
			Status:  statusError,
			Message: "Database connection failed",
			Code:    codeDatabaseUnavailable,
		})
	}

	return c.JSON(http.StatusOK, newAdminHealthResponse(time.Now()))
}
