// Package httpimpl serves the fractionalize record API over echo.
package httpimpl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/repository"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var FractionalizeStat = gocore.NewStat("Fractionalize")

type HTTP struct {
	logger     ulogger.Logger
	settings   *settings.Settings
	repository repository.Interface
	e          *echo.Echo
	server     atomic.Pointer[http.Server]
	startTime  time.Time
}

// New creates the HTTP server and registers the routes under
// fractionalize_apiPrefix:
//
//	GET /records      record query (alias /user)
//	GET /overview     totals, recent records and activity (alias /mainpage)
//	GET /admin/stats  admin statistics, bearer token required
//	GET /admin/health store ping, bearer token required
//
// /alive, /health and the prometheus endpoint are served at the root.
func New(logger ulogger.Logger, tSettings *settings.Settings, repo repository.Interface) (*HTTP, error) {
	initPrometheusMetrics()

	e := echo.New()
	e.Debug = tSettings.Fractionalize.EchoDebug
	e.HideBanner = true
	e.HidePort = true

	h := &HTTP{
		logger:     logger,
		settings:   tSettings,
		repository: repo,
		e:          e,
		startTime:  time.Now(),
	}

	e.HTTPErrorHandler = h.httpErrorHandler

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return true, nil
		},
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestedWith},
		ExposeHeaders: []string{echo.HeaderContentLength, echo.HeaderContentType, echo.HeaderXRequestID},
		MaxAge:        86400,
	}))

	e.Use(middleware.Gzip())

	if e.Debug {
		e.Use(customLoggerMiddleware(logger))
	}

	e.GET("/alive", func(c echo.Context) error {
		return c.String(http.StatusOK, fmt.Sprintf("Fractionalize service is alive. Uptime: %s\n", time.Since(h.startTime)))
	})

	e.GET("/health", func(c echo.Context) error {
		logger.Debugf("[Fractionalize_http] Health check")

		status, details, err := repo.Health(c.Request().Context(), false)
		if err != nil {
			return c.String(http.StatusInternalServerError, details)
		}

		return c.String(status, details)
	})

	if endpoint := tSettings.PrometheusEndpoint; endpoint != "" {
		e.GET(endpoint, echo.WrapHandler(promhttp.Handler()))
	}

	apiGroup := e.Group(tSettings.Fractionalize.APIPrefix, metricsMiddleware)

	apiGroup.GET("/records", h.GetRecords)
	apiGroup.GET("/user", h.GetRecords)
	apiGroup.GET("/overview", h.GetOverview)
	apiGroup.GET("/mainpage", h.GetOverview)

	adminGroup := apiGroup.Group("/admin", h.adminAuth(tSettings.Fractionalize.AdminToken))

	adminGroup.GET("/stats", h.GetAdminStats)
	adminGroup.GET("/health", h.GetAdminHealth)

	return h, nil
}

func (h *HTTP) Init(_ context.Context) error {
	return nil
}

// Listen binds addr. Start serves on the returned listener.
func (h *HTTP) Listen(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.NewServiceError("[Fractionalize] failed to listen on %s", addr, err)
	}

	return listener, nil
}

// Start serves until ctx is done. HTTPS is used when securityLevelHTTP is not
// zero, which requires server_certFile and server_keyFile.
func (h *HTTP) Start(ctx context.Context, listener net.Listener) error {
	mode := "HTTPS"
	if level := h.settings.SecurityLevelHTTP; level == 0 {
		mode = "HTTP"
	}

	var certFile, keyFile string

	if mode == "HTTPS" {
		certFile = h.settings.ServerCertFile
		if certFile == "" {
			_ = listener.Close()
			return errors.NewConfigurationError("server_certFile is required for HTTPS")
		}

		keyFile = h.settings.ServerKeyFile
		if keyFile == "" {
			_ = listener.Close()
			return errors.NewConfigurationError("server_keyFile is required for HTTPS")
		}
	}

	srv := &http.Server{
		Handler:           h.e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.server.Store(srv)

	go func() {
		<-ctx.Done()

		h.logger.Infof("[Fractionalize] %s (impl) service shutting down", mode)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Errorf("[Fractionalize] %s (impl) service shutdown error: %s", mode, err)
		}
	}()

	h.logger.Infof("[Fractionalize] %s service listening on %s", mode, listener.Addr())

	var err error

	if mode == "HTTP" {
		err = srv.Serve(listener)
	} else {
		err = srv.ServeTLS(listener, certFile, keyFile)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.NewServiceError("[Fractionalize] %s server failed", mode, err)
	}

	return nil
}

func (h *HTTP) Stop(ctx context.Context) error {
	if srv := h.server.Load(); srv != nil {
		return srv.Shutdown(ctx)
	}

	return nil
}

// ServeHTTP lets the server be driven directly, as in tests.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.e.ServeHTTP(w, r)
}

func customLoggerMiddleware(logger ulogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			logger.Infof("http request: Method=%s, URI=%s, RemoteAddr=%s, RequestID=%s, Status=%d, Duration=%v, err=%v",
				c.Request().Method, c.Request().RequestURI, c.RealIP(), c.Response().Header().Get(echo.HeaderXRequestID), status, duration, err)

			return err
		}
	}
}
