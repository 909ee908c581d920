package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/memory"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

func init() {
	availableDatabases["memory"] = func(_ context.Context, logger ulogger.Logger, _ *url.URL, _ *settings.Settings) (fractionalize.Store, error) {
		return memory.New(logger), nil
	}
}
