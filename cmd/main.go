package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/watchparty/internal/access"
	"github.com/weiawesome/wes-io-live/watchparty/internal/activity"
	"github.com/weiawesome/wes-io-live/watchparty/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	wpgrpc "github.com/weiawesome/wes-io-live/watchparty/internal/grpc"
	"github.com/weiawesome/wes-io-live/watchparty/internal/handler"
	"github.com/weiawesome/wes-io-live/watchparty/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty/internal/mediaref"
	"github.com/weiawesome/wes-io-live/watchparty/internal/registry"
	"github.com/weiawesome/wes-io-live/watchparty/internal/service"
	"github.com/weiawesome/wes-io-live/watchparty/internal/store"
	pkglog "github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting watch party service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Activity publisher
	bus, err := pubsub.NewPublisher(cfg.PubSub.Config)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to initialize pubsub")
	}
	defer bus.Close()
	recorder := activity.NewPublisher(bus, cfg.PubSub.QueueSize)
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(ctx)
		close(recorderDone)
	}()
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("activity publisher ready")

	// Room presence registry
	var reg registry.Registry = registry.NopRegistry{}
	if cfg.Redis.Enabled {
		redisReg, err := registry.NewRedisRegistry(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize redis registry")
		}
		reg = redisReg
		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	}
	defer reg.Close()

	if err := reg.StartHeartbeat(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start registry heartbeat")
	}
	defer reg.StopHeartbeat()

	tracker := registry.NewTracker(reg, recorder)
	go tracker.Run(ctx)

	// Hub and services
	rooms := store.NewRooms(cfg.Playback.DefaultRoom, domain.MediaID(cfg.Playback.DefaultMedia), cfg.Playback.MaxRooms)
	wsHub := hub.NewHub(cfg.WebSocket)
	svc := service.NewWatchPartyService(rooms, wsHub, mediaref.NewExtractor(), tracker, recorder)

	wsHandler := handler.NewWSHandler(wsHub, svc, cfg.WebSocket, cfg.Playback.DefaultRoom)
	wsHub.SetHandler(wsHandler)
	go wsHub.Run(ctx)

	gate, err := access.NewGate(cfg.Access.SecretHash)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize access gate")
	}
	if gate.Enabled() {
		logger.Info().Msg("access gate enabled")
	}

	// Optional gRPC health server
	if cfg.GRPC.Enabled {
		grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		grpcServer, err := wpgrpc.StartGRPCServer(grpcAddr, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start grpc server")
		}
		defer grpcServer.Stop()
	}

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	wsHandler.RegisterRoutes(r, gate.Require())
	handler.NewHTTPHandler(svc, wsHub, reg).RegisterRoutes(r)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("watch party service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down watch party service")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Stop the hub and workers, then let the publisher flush its queue.
	cancel()
	select {
	case <-recorderDone:
	case <-shutdownCtx.Done():
	}

	logger.Info().Int64("dropped_events", recorder.Dropped()).Msg("watch party service stopped")
}
