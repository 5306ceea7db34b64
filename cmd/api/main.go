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
	"github.com/shopspring/decimal"

	appauth "github.com/jhoicas/Farmacia-api/internal/application/auth"
	appexpiry "github.com/jhoicas/Farmacia-api/internal/application/expiry"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/pos"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	domexpiry "github.com/jhoicas/Farmacia-api/internal/domain/expiry"
	infrapdf "github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
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

	// Los umbrales de vencimiento y la tasa de impuesto se validan al
	// arranque: una configuración inválida aborta el proceso, nunca se
	// degrada en silencio.
	thresholds := domexpiry.Thresholds{
		CriticalDays: cfg.Expiry.CriticalDays,
		HighDays:     cfg.Expiry.HighDays,
		MediumDays:   cfg.Expiry.MediumDays,
		LowDays:      cfg.Expiry.LowDays,
	}
	if err := thresholds.Validate(); err != nil {
		log.Fatal().Err(err).Msg("umbrales de vencimiento inválidos")
	}
	taxRate, err := decimal.NewFromString(cfg.Pharmacy.TaxRate)
	if err != nil || taxRate.IsNegative() {
		log.Fatal().Str("tax_rate", cfg.Pharmacy.TaxRate).Msg("PHARMACY_TAX_RATE inválido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	reservations := inventory.NewReservationEngine(batchRepo, txRunner)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	inventoryUC := inventory.NewUseCase(batchRepo, movementRepo, productRepo, txRunner)
	expiryUC := appexpiry.NewUseCase(batchRepo, txRunner, thresholds)

	receiptGenerator := infrapdf.NewReceiptGenerator(infrapdf.PharmacyInfo{
		Name:     cfg.Pharmacy.Name,
		Address:  cfg.Pharmacy.Address,
		Phone:    cfg.Pharmacy.Phone,
		Currency: cfg.Pharmacy.Currency,
	})
	posUC := pos.NewUseCase(
		productRepo, customerRepo, saleRepo, batchRepo,
		reservations, txRunner, receiptGenerator, taxRate,
	)

	authUC := appauth.NewAuthUseCase(userRepo, appauth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmacia API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		InventoryUC:  inventoryUC,
		Reservations: reservations,
		ExpiryUC:     expiryUC,
		POSUC:        posUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
