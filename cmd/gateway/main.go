package main

import (
	"fmt"
	"os"
	"time"

	"fair-mapper/internal/common/config"
	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/common/middleware"
	"fair-mapper/internal/gateway/handlers"
	"fair-mapper/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Dir:     cfg.LogDir,
		Service: "gateway",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
	}
	log := logger.Get("main")

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimitMB << 20,
		AppName:      "API Gateway",
		ErrorHandler: middleware.ErrorHandler,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(middleware.Recover())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(cfg.MapperURL))
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec(getEnv("OPENAPI_SPEC", "docs/mapper.openapi.yaml")))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Fair Mapper API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	proxy.SetTimeout(time.Duration(cfg.WriteTimeout+cfg.ReadTimeout) * time.Second)
	toMapper := proxy.Pass(cfg.MapperURL, "/api/v1")
	for _, prefix := range []string{"/maps", "/stores", "/sessions", "/public", "/assets"} {
		api.All(prefix, toMapper)
		api.All(prefix+"/*", toMapper)
	}

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Starting API Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Infof("Proxying /api/v1 to %s", cfg.MapperURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
