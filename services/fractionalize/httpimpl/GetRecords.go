package httpimpl

import (
	"net/http"

	"github.com/bsv-blockchain/fractionalize/services/fractionalize/query"
	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"github.com/labstack/echo/v4"
)

// GetRecords serves the record query view.
//
// Query parameters: txid, limit (default 50, max 100), skip (default 0),
// startDate, endDate (inclusive bounds) and sortOrder (ascending|descending,
// default descending). Invalid sortOrder or dates are rejected with 400 before
// the store is consulted.
func (h *HTTP) GetRecords(c echo.Context) (err error) {
	ctx, _, deferFn := tracing.Start(c.Request().Context(), "GetRecords_http",
		tracing.WithParentStat(FractionalizeStat),
		tracing.WithLogMessage(h.logger, "[GetRecords_http] for %s: %s", c.RealIP(), c.QueryString()),
	)

	defer func() {
		deferFn(err)
	}()

	spec, err := query.Validate(query.Params{
		TxID:      c.QueryParam("txid"),
		Limit:     c.QueryParam("limit"),
		Skip:      c.QueryParam("skip"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		SortOrder: c.QueryParam("sortOrder"),
	}, query.Options{StrictTxID: h.settings.Fractionalize.StrictTxID})
	if err != nil {
		return h.sendError(c, err, "Invalid query parameters")
	}

	refs, err := h.repository.QueryRecords(ctx, spec)
	if err != nil {
		return h.sendError(c, err, "Failed to query records")
	}

	return c.JSON(http.StatusOK, newRecordsResponse(spec, refs))
}
