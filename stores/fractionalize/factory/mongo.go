package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/mongo"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

func init() {
	newMongo := func(ctx context.Context, logger ulogger.Logger, storeURL *url.URL, _ *settings.Settings) (fractionalize.Store, error) {
		return mongo.New(ctx, logger, storeURL)
	}

	availableDatabases["mongodb"] = newMongo
	availableDatabases["mongodb+srv"] = newMongo
}
