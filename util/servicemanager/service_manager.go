// Package servicemanager runs long-lived services under one errgroup, starting
// them in registration order and stopping them in reverse.
package servicemanager

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"golang.org/x/sync/errgroup"
)

const (
	startTimeout = 5 * time.Second
	stopTimeout  = 5 * time.Second
)

// Service is a managed component. Start blocks until ctx is done and must
// close readyCh once the service is serving.
type Service interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
	Init(ctx context.Context) error
	Start(ctx context.Context, readyCh chan<- struct{}) error
	Stop(ctx context.Context) error
}

type serviceWrapper struct {
	name     string
	instance Service
	readyCh  chan struct{}
}

type ServiceManager struct {
	services   []serviceWrapper
	logger     ulogger.Logger
	Ctx        context.Context
	cancelFunc context.CancelFunc
	g          *errgroup.Group
}

// NewServiceManager returns a manager whose context is cancelled on SIGINT or
// SIGTERM, or when any managed service returns an error.
func NewServiceManager(ctx context.Context, logger ulogger.Logger) *ServiceManager {
	ctx, cancelFunc := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	sm := &ServiceManager{
		logger:     logger,
		Ctx:        ctx,
		cancelFunc: cancelFunc,
		g:          g,
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		defer signal.Stop(sigs)

		select {
		case <-sigs:
			sm.logger.Infof("🟠 Received shutdown signal. Stopping services...")
			sm.cancelFunc()
		case <-ctx.Done():
		}
	}()

	return sm
}

// AddService initialises the service and starts it once the previously added
// service has signalled ready.
func (sm *ServiceManager) AddService(name string, service Service) error {
	var previous chan struct{}
	if len(sm.services) > 0 {
		previous = sm.services[len(sm.services)-1].readyCh
	}

	sw := serviceWrapper{
		name:     name,
		instance: service,
		readyCh:  make(chan struct{}),
	}

	sm.services = append(sm.services, sw)

	sm.logger.Infof("⚪️ Initializing service %s...", name)

	if err := service.Init(sm.Ctx); err != nil {
		return errors.NewServiceError("failed to initialise service %s", name, err)
	}

	sm.g.Go(func() error {
		if previous != nil {
			if err := waitReady(sm.Ctx, previous); err != nil {
				return errors.NewServiceError("%s timed out waiting for previous service to start", name, err)
			}
		}

		sm.logger.Infof("🟢 Starting service %s...", name)

		if err := service.Start(sm.Ctx, sw.readyCh); err != nil {
			sm.logger.Errorf("Error from service start %s: %v", name, err)
			return err
		}

		return nil
	})

	return nil
}

func waitReady(ctx context.Context, readyCh <-chan struct{}) error {
	timer := time.NewTimer(startTimeout)
	defer timer.Stop()

	select {
	case <-readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

// WaitForServicesToBeReady blocks until every service has closed its ready
// channel or ctx is done.
func (sm *ServiceManager) WaitForServicesToBeReady(ctx context.Context) error {
	for _, service := range sm.services {
		select {
		case <-service.readyCh:
			sm.logger.Infof("🟢 Service %s is ready", service.name)
		case <-ctx.Done():
			return errors.NewContextError("service %s not ready", service.name, ctx.Err())
		}
	}

	return nil
}

func (sm *ServiceManager) ForceShutdown() {
	sm.cancelFunc()
}

// Wait blocks until the services finish or the context is cancelled, then stops
// every service in reverse order. Cancellation is a clean exit.
func (sm *ServiceManager) Wait() error {
	err := sm.g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		sm.logger.Errorf("Received error: %v", err)
	}

	for i := len(sm.services) - 1; i >= 0; i-- {
		service := sm.services[i]

		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)

		sm.logger.Infof("🟠 Stopping service %s...", service.name)

		if stopErr := service.instance.Stop(stopCtx); stopErr != nil {
			sm.logger.Warnf("[%s] Failed to stop service: %v", service.name, stopErr)
		} else {
			sm.logger.Infof("[%s] Service stopped gracefully", service.name)
		}

		stopCancel()
	}

	sm.logger.Infof("🛑 All services stopped.")

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

type serviceHealth struct {
	Service      string          `json:"service"`
	Status       int             `json:"status"`
	Dependencies json.RawMessage `json:"dependencies,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// HealthHandler reports 503 if any managed service is unhealthy.
func (sm *ServiceManager) HealthHandler(ctx context.Context, checkLiveness bool) (int, string, error) {
	overallStatus := http.StatusOK
	services := make([]serviceHealth, 0, len(sm.services))

	for _, service := range sm.services {
		status, details, err := service.instance.Health(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		sh := serviceHealth{Service: service.name, Status: status}
		if json.Valid([]byte(details)) {
			sh.Dependencies = json.RawMessage(details)
		}

		if err != nil {
			sh.Error = err.Error()
		}

		services = append(services, sh)
	}

	body, err := json.MarshalIndent(struct {
		Status   int             `json:"status"`
		Services []serviceHealth `json:"services"`
	}{overallStatus, services}, "", "  ")
	if err != nil {
		return http.StatusInternalServerError, "", err
	}

	return overallStatus, string(body), nil
}
