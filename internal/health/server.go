// Package health serves the liveness endpoint the deployment platform
// polls, and carries the Telegram webhook when webhook mode is enabled.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Server wraps the echo instance serving /health (and /webhook when a
// webhook handler is attached).
type Server struct {
	echo *echo.Echo
	port int
	log  logrus.FieldLogger
}

// NewServer creates the HTTP server. webhook may be nil when the bot
// runs in polling mode.
func NewServer(port int, webhook http.HandlerFunc, logger logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, status{Status: "healthy", Service: "wtg-telegram-bot"})
	})
	if webhook != nil {
		e.POST("/webhook", echo.WrapHandler(webhook))
	}

	return &Server{
		echo: e,
		port: port,
		log:  logger.WithField("component", "health_server"),
	}
}

// Start listens until the server is shut down. Blocks.
func (s *Server) Start() error {
	s.log.WithField("port", s.port).Info("Health check server starting")
	err := s.echo.Start(fmt.Sprintf(":%d", s.port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Health check server shutting down")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
