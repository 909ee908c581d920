// Package fractionalize is the read-only query and statistics service over
// fractionalize records.
package fractionalize

import (
	"context"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/httpimpl"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/repository"
	"github.com/bsv-blockchain/fractionalize/settings"
	records "github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/factory"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/bsv-blockchain/fractionalize/util/health"
)

// Server wires the record store, repository and HTTP API into a service
// managed by util/servicemanager.
type Server struct {
	logger     ulogger.Logger
	settings   *settings.Settings
	store      records.Store
	ownsStore  bool
	repository *repository.Repository
	httpServer *httpimpl.HTTP
	stopOnce   sync.Once
}

// New creates the service. When store is nil it is created in Init from
// fractionalize_store and closed again in Stop.
func New(logger ulogger.Logger, tSettings *settings.Settings, store records.Store) *Server {
	return &Server{
		logger:   logger,
		settings: tSettings,
		store:    store,
	}
}

func (s *Server) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	checks := make([]health.Check, 0, 1)

	if s.store != nil {
		checks = append(checks, health.Check{Name: "RecordStore", Check: s.store.Health})
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

func (s *Server) Init(ctx context.Context) (err error) {
	if s.settings.Fractionalize.HTTPListenAddress == "" {
		return errors.NewConfigurationError("no fractionalize_httpListenAddress setting found")
	}

	if s.store == nil {
		s.store, err = factory.NewStore(ctx, s.logger, s.settings, s.settings.Fractionalize.StoreURL)
		if err != nil {
			return errors.NewServiceError("[Fractionalize] error creating record store", err)
		}

		s.ownsStore = true
	}

	s.repository, err = repository.NewRepository(s.logger, s.settings, s.store)
	if err != nil {
		return errors.NewServiceError("[Fractionalize] error creating repository", err)
	}

	s.httpServer, err = httpimpl.New(s.logger, s.settings, s.repository)
	if err != nil {
		return errors.NewServiceError("[Fractionalize] error creating http server", err)
	}

	if err = s.httpServer.Init(ctx); err != nil {
		return errors.NewServiceError("[Fractionalize] error initializing http server", err)
	}

	return nil
}

// Start binds the listen address, signals ready and serves until ctx is done.
func (s *Server) Start(ctx context.Context, readyCh chan<- struct{}) error {
	var closeOnce sync.Once
	defer closeOnce.Do(func() { close(readyCh) })

	listener, err := s.httpServer.Listen(s.settings.Fractionalize.HTTPListenAddress)
	if err != nil {
		return err
	}

	closeOnce.Do(func() { close(readyCh) })

	if err = s.httpServer.Start(ctx, listener); err != nil {
		s.logger.Errorf("[Fractionalize] error in http server: %v", err)
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	var err error

	s.stopOnce.Do(func() {
		if s.httpServer != nil {
			s.logger.Infof("[Fractionalize] Stopping http server")

			if stopErr := s.httpServer.Stop(ctx); stopErr != nil {
				s.logger.Errorf("[Fractionalize] error stopping http server: %v", stopErr)
			}
		}

		if s.repository != nil {
			s.repository.Close()
		}

		if s.ownsStore && s.store != nil {
			err = s.store.Close(ctx)
		}
	})

	return err
}
