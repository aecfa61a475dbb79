package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/config"
	"github.com/campusmatch/campusmatch/internal/realtime"
	"github.com/campusmatch/campusmatch/internal/service/account"
	"github.com/campusmatch/campusmatch/internal/service/chat"
	"github.com/campusmatch/campusmatch/internal/service/explore"
	"github.com/campusmatch/campusmatch/internal/service/swipe"
)

// Server wires the HTTP API and the websocket endpoint over the service
// layer.
type Server struct {
	appCtx *app.AppContext
	cfg    *config.Config
	hub    *realtime.Hub

	accounts *account.Service
	swipes   *swipe.Service
	explore  *explore.Service
	chat     *chat.Service

	httpServer *http.Server
}

func New(
	cfg *config.Config,
	appCtx *app.AppContext,
	hub *realtime.Hub,
	accounts *account.Service,
	swipes *swipe.Service,
	exploreSvc *explore.Service,
	chatSvc *chat.Service,
) *Server {
	s := &Server{
		appCtx:   appCtx,
		cfg:      cfg,
		hub:      hub,
		accounts: accounts,
		swipes:   swipes,
		explore:  exploreSvc,
		chat:     chatSvc,
	}

	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:        s.Router(),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   0, // websocket connections are long-lived
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.appCtx.Logger.Info("starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.appCtx.Logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
