// Package factory builds a record store from its URL scheme.
package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	storelogger "github.com/bsv-blockchain/fractionalize/stores/fractionalize/logger"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

type initFunc func(ctx context.Context, logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (fractionalize.Store, error)

var availableDatabases = map[string]initFunc{}

func NewStore(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (fractionalize.Store, error) {
	if storeURL == nil {
		return nil, errors.NewConfigurationError("record store URL not set")
	}

	dbInit, ok := availableDatabases[storeURL.Scheme]
	if !ok {
		return nil, errors.NewConfigurationError("unknown record store scheme: %s", storeURL.Scheme)
	}

	logger.Infof("[RecordStore] connecting to %s store at %s", storeURL.Scheme, storeURL.Redacted())

	store, err := dbInit(ctx, logger, storeURL, tSettings)
	if err != nil {
		return nil, err
	}

	if storeURL.Query().Get("logging") == "true" {
		logger.Infof("[RecordStore] call logging enabled")
		store = storelogger.New(logger, store)
	}

	return store, nil
}
