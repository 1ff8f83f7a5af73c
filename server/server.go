// Package server assembles the HTTP surface: REST API, WebSocket gateway and
// the metrics endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/ai"
	"github.com/citycompass/citycompass/dialog"
	"github.com/citycompass/citycompass/internal/metrics"
	"github.com/citycompass/citycompass/internal/profile"
	"github.com/citycompass/citycompass/location"
	"github.com/citycompass/citycompass/plugin/gmaps"
	"github.com/citycompass/citycompass/plugin/transit"
	apiv1 "github.com/citycompass/citycompass/server/router/api/v1"
	"github.com/citycompass/citycompass/server/router/ws"
	"github.com/citycompass/citycompass/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	llm        ai.LLMService
}

// NewServer wires the full pipeline: maps client (when configured), model
// client, dialog router, REST routes and the socket gateway.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	var (
		directions location.Directions
		places     location.Places
	)
	if profile.IsMapsEnabled() {
		mapsClient, err := gmaps.NewClient(profile.MapsAPIKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create maps client")
		}
		directions = mapsClient
		places = mapsClient
		slog.Info("google maps integration enabled")
	} else {
		slog.Info("google maps integration disabled, route context unavailable")
	}

	llm, err := ai.NewLLMService(&ai.LLMConfig{
		Provider: profile.LLMProvider,
		Model:    profile.LLMModel,
		APIKey:   profile.LLMAPIKey,
		BaseURL:  profile.LLMBaseURL,
		Timeout:  profile.LLMTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create llm service")
	}
	s.llm = llm

	contextBuilder := location.NewContextBuilder(directions, places)
	router := dialog.NewRouter(llm, contextBuilder, transit.NewPlanner(), 4)
	session := dialog.NewSessionService(router, store)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, session)
	apiV1Service.RegisterRoutes(e)

	gateway := ws.NewGateway(session)
	e.GET("/ws", gateway.Handle)

	e.GET("/metrics", echo.WrapHandler(metrics.Default().Handler()))

	// Warm the model in the background so the first chat does not pay the
	// cold-start cost.
	go llm.Warmup(ctx)

	return s, nil
}

// Start begins serving. It returns once the listener is up; serve errors are
// logged from the background goroutine.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

// Shutdown drains connections and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("citycompass stopped properly")
}
