package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/vitalsync/internal/buffer"
	"github.com/claude/vitalsync/internal/cache"
	"github.com/claude/vitalsync/internal/config"
	"github.com/claude/vitalsync/internal/mcp"
	"github.com/claude/vitalsync/internal/metric"
	"github.com/claude/vitalsync/internal/pipeline"
	"github.com/claude/vitalsync/internal/queue"
	"github.com/claude/vitalsync/internal/server"
	"github.com/claude/vitalsync/internal/transmit"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Optional .env for local development; config env overrides pick it up.
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("VitalSync starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := queue.RunMigrations(cfg.Queue.Dir, cfg.Queue.MigrationsPath); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	q, err := queue.Open(cfg.Queue.Dir, log)
	if err != nil {
		log.Error("failed to open offline queue", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	backend := transmit.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout, log)
	probe, err := transmit.NewDialProbe(cfg.Backend.URL, cfg.Backend.ProbeTimeout, cfg.Backend.ProbeCacheTTL)
	if err != nil {
		log.Error("invalid backend url", "url", cfg.Backend.URL, "error", err)
		os.Exit(1)
	}
	router := transmit.NewRouter(backend, q, probe, cfg.Backend.Timeout, log)

	series := buffer.New(cfg.Buffer.MaxPoints, cfg.Buffer.Window)

	var latest *cache.LatestCache
	if cfg.Redis.Enabled {
		latest, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			log.Error("failed to connect redis", "error", err)
			os.Exit(1)
		}
		defer latest.Close()
		log.Info("redis cache connected", "addr", cfg.Redis.Addr)
	}

	mapper := metric.NewMapper(cfg.Sensor.Model, log)
	pipe := pipeline.New(mapper, router, series, latest, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncer := queue.NewSyncer(q, backend, probe, cfg.Queue.SyncInterval, log)
	go syncer.Run(ctx)

	if cfg.MQTT.Enabled {
		src, err := pipeline.NewMQTTSource(pipeline.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
		}, pipe, log)
		if err != nil {
			log.Error("failed to start mqtt source", "error", err)
			os.Exit(1)
		}
		defer src.Close()
	}

	srv := server.New(pipe, series, syncer, latest, cfg.Auth.APIKey, log)

	if cfg.MCP.Enabled {
		ds := mcp.NewGatewayData(series, syncer)
		srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcp.New(ds, Version, log)))
		log.Info("mcp surface enabled", "path", "/mcp")
	}

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
