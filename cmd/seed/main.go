// seed carga en PostgreSQL el catálogo de vuelos (CSV) y la semilla de inventario (YAML):
// lotes iniciales y operadores.
//
// Uso: go run ./cmd/seed [ruta/inventory_seed.yaml]
// Por defecto usa INVENTORY_SEED_PATH o inventory_seed.yaml en el directorio actual.
// Requiere STORE_DRIVER=postgres y la conexión DATABASE_URL / DB_*.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/application/auth"
	"github.com/jhoicas/stockpilot-api/internal/application/catalog"
	"github.com/jhoicas/stockpilot-api/internal/application/inventory"
	infracsv "github.com/jhoicas/stockpilot-api/internal/infrastructure/csv"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/seed"
	"github.com/jhoicas/stockpilot-api/pkg/config"
	"github.com/jhoicas/stockpilot-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Driver != config.StorePostgres {
		fmt.Fprintln(os.Stderr, "seed requiere STORE_DRIVER=postgres (en memoria la semilla se aplica al arrancar la API)")
		os.Exit(1)
	}

	seedPath := cfg.Store.InventorySeed
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}
	if seedPath == "" {
		seedPath = "inventory_seed.yaml"
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	catalogUC := catalog.NewCatalogUseCase(store.Catalog)
	if cfg.Store.CatalogCSV != "" {
		flights, products, err := infracsv.NewLoader().LoadCatalog(cfg.Store.CatalogCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
			os.Exit(1)
		}
		if err := catalogUC.Replace(ctx, flights, products); err != nil {
			fmt.Fprintf(os.Stderr, "Guardar catálogo: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catálogo: %d vuelos, %d productos\n", len(flights), len(products))
	}

	f, err := seed.LoadFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer semilla: %v\n", err)
		os.Exit(1)
	}
	products, err := store.Catalog.ListProducts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer productos: %v\n", err)
		os.Exit(1)
	}

	lotUC := inventory.NewLotUseCase(store.Lots, time.Now)
	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	res, err := seed.Apply(ctx, f, products, lotUC, authUC, log.Component("seed"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar semilla: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Semilla %s: %d lotes, %d operadores, %d omitidos\n", seedPath, res.LotsCreated, res.OperatorsCreated, res.Skipped)
}
