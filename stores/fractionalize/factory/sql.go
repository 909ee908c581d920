package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/sql"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

func init() {
	newSQL := func(ctx context.Context, logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (fractionalize.Store, error) {
		return sql.New(ctx, logger, storeURL, tSettings)
	}

	availableDatabases["postgres"] = newSQL
	availableDatabases["sqlite"] = newSQL
	availableDatabases["sqlitememory"] = newSQL
}
