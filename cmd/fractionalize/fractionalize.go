// Package fractionalize is the command line entry point of the fractionalize
// service. Without a subcommand it serves the API.
package fractionalize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	service "github.com/bsv-blockchain/fractionalize/services/fractionalize"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/repository"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/factory"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/bsv-blockchain/fractionalize/util/servicemanager"
	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
)

const serviceName = "Fractionalize"

// Run initialises gocore and settings and runs the CLI with args. The
// returned error implements cli.ExitCoder when a specific exit code applies.
func Run(progname, version, commit string, args []string) error {
	gocore.SetInfo(progname, version, commit)

	tSettings := settings.NewSettings()
	tSettings.Version = version
	tSettings.Commit = commit

	logger := ulogger.New(progname, ulogger.WithLevel(tSettings.LogLevel))

	return NewApp(logger, tSettings, os.Stdout).Run(args)
}

// NewApp builds the CLI. Command output is written to out.
func NewApp(logger ulogger.Logger, tSettings *settings.Settings, out io.Writer) *cli.App {
	storeFlag := &cli.StringFlag{
		Name:  "store",
		Usage: "record store URL, overrides fractionalize_store",
	}

	return &cli.App{
		Name:      "fractionalize",
		Usage:     "Query and statistics service for fractionalize records",
		Version:   tSettings.Version,
		Writer:    out,
		ErrWriter: out,
		Flags:     []cli.Flag{storeFlag},
		// exit codes are applied by the caller of Run
		ExitErrHandler: func(_ *cli.Context, _ error) {},
		Before: func(c *cli.Context) error {
			return applyStoreFlag(c, tSettings)
		},
		Action: func(c *cli.Context) error {
			return serve(c.Context, logger, tSettings)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Action: func(c *cli.Context) error {
					return serve(c.Context, logger, tSettings)
				},
			},
			{
				Name:  "stats",
				Usage: "Print the admin statistics as JSON and exit",
				Action: func(c *cli.Context) error {
					return printStats(c.Context, logger, tSettings, c.App.Writer)
				},
			},
			{
				Name:  "health",
				Usage: "Ping the record store, exit non-zero when it is unreachable",
				Action: func(c *cli.Context) error {
					return checkHealth(c.Context, logger, tSettings, c.App.Writer)
				},
			},
		},
	}
}

func applyStoreFlag(c *cli.Context, tSettings *settings.Settings) error {
	raw := c.String("store")
	if raw == "" {
		return nil
	}

	storeURL, err := url.Parse(raw)
	if err != nil {
		return cli.Exit(errors.NewConfigurationError("invalid --store URL", err).Error(), 2)
	}

	tSettings.Fractionalize.StoreURL = storeURL

	return nil
}

func serve(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) error {
	stats := gocore.Config().Stats()
	logger.Infof("STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, tSettings.Version, tSettings.Commit)

	if tSettings.TracingEnabled {
		if err := tracing.InitTracer(tSettings); err != nil {
			logger.Warnf("failed to initialize tracer: %v", err)
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
				logger.Warnf("failed to shut down tracer: %v", err)
			}
		}()
	}

	sm := servicemanager.NewServiceManager(ctx, logger)

	if err := sm.AddService(serviceName, service.New(logger.New("frac"), tSettings, nil)); err != nil {
		sm.ForceShutdown()
		_ = sm.Wait()

		return err
	}

	return sm.Wait()
}

func newRepository(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) (*repository.Repository, func(), error) {
	store, err := factory.NewStore(ctx, logger, tSettings, tSettings.Fractionalize.StoreURL)
	if err != nil {
		return nil, nil, err
	}

	repo, err := repository.NewRepository(logger, tSettings, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, nil, err
	}

	return repo, func() {
		repo.Close()

		if err := store.Close(context.Background()); err != nil {
			logger.Warnf("failed to close record store: %v", err)
		}
	}, nil
}

func printStats(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, out io.Writer) error {
	repo, closeFn, err := newRepository(ctx, logger, tSettings)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeFn()

	stats, err := repo.AdminStats(ctx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return errors.NewProcessingError("failed to encode statistics", err)
	}

	_, err = fmt.Fprintln(out, string(b))

	return err
}

func checkHealth(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, out io.Writer) error {
	repo, closeFn, err := newRepository(ctx, logger, tSettings)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeFn()

	if err = repo.Ping(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("database unavailable: %v", err), 1)
	}

	_, err = fmt.Fprintf(out, "database connected %s\n", time.Now().UTC().Format(time.RFC3339))

	return err
}
