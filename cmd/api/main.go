package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/luc4n/StockMaster/internal/application/movement"
	"github.com/luc4n/StockMaster/internal/application/reporting"
	infracache "github.com/luc4n/StockMaster/internal/infrastructure/cache"
	"github.com/luc4n/StockMaster/internal/infrastructure/jobs"
	infrapdf "github.com/luc4n/StockMaster/internal/infrastructure/pdf"
	"github.com/luc4n/StockMaster/internal/infrastructure/postgres"
	httpRouter "github.com/luc4n/StockMaster/internal/interfaces/http"
	"github.com/luc4n/StockMaster/pkg/config"
	"github.com/luc4n/StockMaster/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	vendorRepo := postgres.NewVendorRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	eventRepo := postgres.NewMovementEventRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache de proyecciones (opcional: sin REDIS_ADDR la app trabaja sin cache).
	var (
		projectionCache  reporting.Cache
		cacheInvalidator movement.CacheInvalidator
	)
	if cfg.Redis.Enabled() {
		redisCache, err := infracache.NewRedisCache(cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisCache.Close()
		projectionCache = redisCache
		cacheInvalidator = redisCache
	}

	pdfGenerator := infrapdf.NewMarotoReportGenerator()

	movementUC := movement.NewUseCase(txRunner, vendorRepo, productRepo, cacheInvalidator, log)
	reportingUC := reporting.NewUseCase(eventRepo, vendorRepo, productRepo, projectionCache, pdfGenerator, log)

	// Auditoría periódica del ledger (solo lectura).
	if cfg.Jobs.ReconciliationInterval > 0 {
		reconciler := jobs.NewReconciler(eventRepo, log)
		go func() {
			if err := jobs.StartReconciliation(ctx, reconciler, cfg.Jobs.ReconciliationInterval, log); err != nil {
				log.Error().Err(err).Msg("job de reconciliación finalizado con error")
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs. El archivo se genera
	// fuera del repositorio; sin él la app arranca sin la UI.
	const swaggerFile = "./docs/swagger.json"
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "StockMaster API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, UI de docs deshabilitada")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MovementUC:  movementUC,
		ReportingUC: reportingUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
