package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"github.com/labstack/echo/v4"
)

// GetAdminStats serves the admin statistics: total, store metadata and the
// 1h to 30d activity counts. A failure of any underlying count fails the whole
// response.
func (h *HTTP) GetAdminStats(c echo.Context) (err error) {
	ctx, _, deferFn := tracing.Start(c.Request().Context(), "GetAdminStats_http",
		tracing.WithParentStat(FractionalizeStat),
		tracing.WithLogMessage(h.logger, "[GetAdminStats_http] for %s", c.RealIP()),
	)

	defer func() {
		deferFn(err)
	}()

	stats, err := h.repository.AdminStats(ctx)
	if err != nil {
		return h.sendError(c, err, "Failed to fetch admin statistics")
	}

	return c.JSON(http.StatusOK, newAdminStatsResponse(stats))
}
