// Package web serves the admin API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/config"
	accesslog "github.com/campusdesk/campusdesk/internal/logger/adapter/fiber"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	"github.com/campusdesk/campusdesk/internal/web/handler/admin/assignment"
	"github.com/campusdesk/campusdesk/internal/web/handler/admin/feature"
	"github.com/campusdesk/campusdesk/internal/web/handler/admin/role"
	"github.com/campusdesk/campusdesk/internal/web/handler/admin/user"
	"github.com/campusdesk/campusdesk/internal/web/handler/login"
	"github.com/campusdesk/campusdesk/internal/web/handler/logout"
	"github.com/campusdesk/campusdesk/internal/web/handler/me"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the Prometheus registry.
	MetricsPath = "/metrics"
)

// ErrEnvInvalid is returned when New is called without all dependencies.
var ErrEnvInvalid = errors.New("web: config, authz service, user provider and session manager are required")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route.
func New(env *handler.Env) (*Service, error) {
	if !env.Valid() {
		return nil, ErrEnvInvalid
	}

	cfg := env.Config

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if err := new(login.Service).Init(app, env); err != nil {
		return nil, err
	}

	if err := new(logout.Service).Init(app, env); err != nil {
		return nil, err
	}

	api := app.Group(handler.APIPath, authmw.Middleware(env.Sessions, env.CookieName()))

	for _, h := range []handler.Service{
		new(feature.Service),
		new(role.Service),
		new(assignment.Service),
		new(user.Service),
		new(me.Service),
	} {
		if err := h.Init(api, env); err != nil {
			return nil, err
		}
	}

	return service, nil
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
