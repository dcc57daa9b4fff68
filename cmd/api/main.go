package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/google/uuid"

	"github.com/jhoicas/stockpilot-api/internal/application/auth"
	"github.com/jhoicas/stockpilot-api/internal/application/catalog"
	"github.com/jhoicas/stockpilot-api/internal/application/inventory"
	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
	infracsv "github.com/jhoicas/stockpilot-api/internal/infrastructure/csv"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stockpilot-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stockpilot-api/internal/infrastructure/redis"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/stockpilot-api/internal/interfaces/http"
	"github.com/jhoicas/stockpilot-api/pkg/config"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
)

// stores repositorios elegidos según STORE_DRIVER.
type stores struct {
	lots    repository.LotRepository
	catalog repository.CatalogRepository
	users   repository.UserRepository
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío: se usa un secreto aleatorio, los tokens no sobreviven un reinicio")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	catalogUC := catalog.NewCatalogUseCase(st.catalog)
	if err := loadCatalog(ctx, cfg.Store.CatalogCSV, catalogUC); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.CatalogCSV).Msg("cargar catálogo de vuelos")
	}

	lotUC := inventory.NewLotUseCase(st.lots, time.Now)
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Store.InventorySeed != "" {
		f, err := seed.LoadFile(cfg.Store.InventorySeed)
		if err != nil {
			log.Fatal().Err(err).Msg("leer semilla de inventario")
		}
		products, err := st.catalog.ListProducts(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("leer productos del catálogo")
		}
		res, err := seed.Apply(ctx, f, products, lotUC, authUC, log.Component("seed"))
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar semilla de inventario")
		}
		log.Info().Int("lots", res.LotsCreated).Int("operators", res.OperatorsCreated).Int("skipped", res.Skipped).Msg("semilla aplicada")
	}

	// Avisos de señal roja por Redis pub/sub (opcional)
	var signals sensor.SignalPublisher
	if cfg.Redis.Enabled() {
		pub, err := infraredis.NewSignalPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SignalChannel)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, avisos de señal desactivados")
		} else {
			defer pub.Close()
			signals = pub
			log.Info().Str("channel", cfg.Redis.SignalChannel).Msg("avisos de señal por redis")
		}
	}

	run := sensor.NewRun(sensor.Config{
		TriggerTimeout: cfg.Sensor.TriggerTimeout,
		PollInterval:   cfg.Sensor.PollInterval,
		Logger:         log.Component("sensor"),
		Stock:          st.lots,
		Signals:        signals,
	})
	runUC := sensor.NewRunUseCase(run, catalogUC)

	reportUC := inventory.NewReportUseCase(st.lots, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), time.Now, cfg.App.Name)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		LotUC:     lotUC,
		ReportUC:  reportUC,
		RunUC:     runUC,
		CatalogUC: catalogUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("http"),
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StockPilot API",
	}))

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	run.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.StorePostgres {
		pg, err := postgres.Open(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &stores{lots: pg.Lots, catalog: pg.Catalog, users: pg.Users, close: pg.Close}, nil
	}
	return &stores{
		lots:    inventory.NewLedger(),
		catalog: memory.NewCatalogRepository(),
		users:   memory.NewUserRepository(),
		close:   func() {},
	}, nil
}

// loadCatalog reemplaza el catálogo con el CSV. Si el archivo no existe se arranca sin vuelos.
func loadCatalog(ctx context.Context, path string, uc *catalog.CatalogUseCase) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	flights, products, err := infracsv.NewLoader().LoadCatalog(path)
	if err != nil {
		return err
	}
	return uc.Replace(ctx, flights, products)
}
