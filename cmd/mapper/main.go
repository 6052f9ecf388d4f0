package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fair-mapper/internal/common/config"
	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/common/middleware"
	"fair-mapper/internal/editor/render"
	"fair-mapper/internal/editor/session"
	"fair-mapper/internal/mapper/handlers"
	"fair-mapper/internal/mapper/logos"
	"fair-mapper/internal/mapper/repository"
	"fair-mapper/internal/mapper/storage"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Mapper Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Dir:     cfg.LogDir,
		Service: "mapper",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
	}
	log := logger.Get("main")

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.SeedSample); err != nil {
		log.Fatalf("init db: %v", err)
	}

	assets := storage.NewFileStorage(cfg.AssetsDir, cfg.AssetsBaseURL)
	if err := assets.EnsureDir(assets.Root()); err != nil {
		log.Fatalf("assets: %v", err)
	}

	opts := render.DefaultOptions()
	opts.DimOpacity = cfg.FilterDimOpacity
	logoCache := logos.NewCache(assets, time.Duration(cfg.LogoFetchTimeout)*time.Second)
	renderer := render.NewRenderer(opts, logoCache)

	registry := session.NewRegistry(session.Deps{
		Persistence: repo,
		Stores:      repo,
		Images:      assets,
		Renderer:    renderer,
	})
	go expireSessions(registry, time.Duration(cfg.SessionTTL)*time.Minute)

	mapperHandler := handlers.New(repo, registry, assets, renderer, session.Canvas{
		Width:  cfg.CanvasWidth,
		Height: cfg.CanvasHeight,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimitMB << 20,
		AppName:      "Mapper Service",
		ErrorHandler: middleware.ErrorHandler,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(middleware.Recover())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Routes
	// ============================================================

	mapperHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Starting Mapper Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// expireSessions закрывает редакторы, простаивающие дольше ttl.
func expireSessions(registry *session.Registry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()

	registry.Sweep(ticker.C, ttl)
}
