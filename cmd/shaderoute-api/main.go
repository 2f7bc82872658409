package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LdDl/shaderoute"
	"github.com/LdDl/shaderoute/pgsource"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := loadConfig()

	log, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	net, err := loadNetwork(cfg, log)
	if err != nil {
		log.Fatal("Can't load network", zap.Error(err))
	}

	planner, err := shaderoute.NewPlanner(
		net,
		shaderoute.WithLogger(log),
		shaderoute.WithCacheSize(cfg.CacheSize),
		shaderoute.WithMaxCandidates(cfg.MaxCandidates),
		shaderoute.WithMaxSnapDistance(cfg.MaxSnapDistance),
	)
	if err != nil {
		log.Fatal("Can't prepare planner", zap.Error(err))
	}
	log.Debug(planner.String())

	app := newApp(NewHandler(planner, log, cfg.RequestTimeout))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error("Server shutdown error", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("Server starting", zap.String("addr", addr), zap.Int("nodes", net.NodesNum()), zap.Int("links", net.LinksNum()))
	if err := app.Listen(addr); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

func newApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ShadeRoute API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	SetupRoutes(app, handler)
	return app
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// loadNetwork reads datasets from PostgreSQL when DATABASE_URL is set, CSV files otherwise
func loadNetwork(cfg *Config, log *zap.Logger) (*shaderoute.Network, error) {
	builder := shaderoute.NewNetworkBuilder(shaderoute.WithBuilderLogger(log))
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		pool, err := pgsource.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		log.Info("Connected to database")
		return pgsource.New(pool).LoadNetwork(ctx, builder)
	}

	comma := ','
	if cfg.Delimiter != "" {
		comma = []rune(cfg.Delimiter)[0]
	}
	segmentsFile, err := os.Open(cfg.SegmentsFile)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open segments file")
	}
	defer segmentsFile.Close()
	segments, err := shaderoute.ReadSegmentsCSV(segmentsFile, shaderoute.WithDelimiter(comma))
	if err != nil {
		return nil, errors.Wrap(err, "Can't read segments")
	}

	var shadows []shaderoute.ShadowRecord
	shadowsFile, err := os.Open(cfg.ShadowsFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("Shadows file is missing, every link is considered unshaded", zap.String("file", cfg.ShadowsFile))
	case err != nil:
		return nil, errors.Wrap(err, "Can't open shadows file")
	default:
		defer shadowsFile.Close()
		shadows, err = shaderoute.ReadShadowsCSV(shadowsFile, shaderoute.WithDelimiter(comma))
		if err != nil {
			return nil, errors.Wrap(err, "Can't read shadows")
		}
	}
	return builder.Build(segments, shadows)
}
