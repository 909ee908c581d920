package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"github.com/labstack/echo/v4"
)

// GetOverview serves the total record count, the most recent records and the
// 24h, 7d and 30d activity counts.
func (h *HTTP) GetOverview(c echo.Context) (err error) {
	ctx, _, deferFn := tracing.Start(c.Request().Context(), "GetOverview_http",
		tracing.WithParentStat(FractionalizeStat),
		tracing.WithLogMessage(h.logger, "[GetOverview_http] for %s", c.RealIP()),
	)

	defer func() {
		deferFn(err)
	}()

	stats, err := h.repository.Overview(ctx)
	if err != nil {
		return h.sendError(c, err, "Failed to fetch main page data")
	}

	return c.JSON(http.StatusOK, newOverviewResponse(stats))
}
