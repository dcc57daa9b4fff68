package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo catálogo de vuelos sobre PostgreSQL. weight_kg es NUMERIC y se lee como decimal.Decimal.
type CatalogRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewCatalogRepository construye el adaptador del catálogo.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool, tx: NewTxRunner(pool)}
}

// ListFlights devuelve los vuelos en orden de carga.
func (r *CatalogRepo) ListFlights(ctx context.Context) ([]entity.Flight, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT flight_number, origin, destination, departure_time
		FROM flights ORDER BY position, flight_number`)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Flight, 0)
	for rows.Next() {
		var f entity.Flight
		if err := rows.Scan(&f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ProductsByFlight devuelve los productos del vuelo (vacío si no existe).
func (r *CatalogRepo) ProductsByFlight(ctx context.Context, flightNumber string) ([]entity.CatalogProduct, error) {
	return r.queryProducts(ctx, `
		SELECT flight_number, product_name, category_quantity, weight_kg
		FROM flight_products WHERE flight_number = $1 ORDER BY id`, flightNumber)
}

// ListProducts devuelve los productos de todos los vuelos en orden de carga.
func (r *CatalogRepo) ListProducts(ctx context.Context) ([]entity.CatalogProduct, error) {
	return r.queryProducts(ctx, `
		SELECT flight_number, product_name, category_quantity, weight_kg
		FROM flight_products ORDER BY id`)
}

func (r *CatalogRepo) queryProducts(ctx context.Context, sql string, args ...any) ([]entity.CatalogProduct, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query flight products: %w", err)
	}
	defer rows.Close()

	out := make([]entity.CatalogProduct, 0)
	for rows.Next() {
		var p entity.CatalogProduct
		if err := rows.Scan(&p.FlightNumber, &p.ProductName, &p.CategoryQuantity, &p.UnitWeight); err != nil {
			return nil, fmt.Errorf("scan flight product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceAll borra y recarga el catálogo en una sola transacción.
func (r *CatalogRepo) ReplaceAll(ctx context.Context, flights []entity.Flight, products []entity.CatalogProduct) error {
	return r.tx.Run(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM flight_products`); err != nil {
			return fmt.Errorf("clear flight products: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM flights`); err != nil {
			return fmt.Errorf("clear flights: %w", err)
		}

		seen := make(map[string]bool, len(flights))
		flightRows := make([][]any, 0, len(flights))
		for _, f := range flights {
			if seen[f.FlightNumber] {
				continue
			}
			seen[f.FlightNumber] = true
			flightRows = append(flightRows, []any{f.FlightNumber, f.Origin, f.Destination, f.DepartureTime, len(flightRows)})
		}
		if _, err := q.CopyFrom(ctx, pgx.Identifier{"flights"},
			[]string{"flight_number", "origin", "destination", "departure_time", "position"},
			pgx.CopyFromRows(flightRows)); err != nil {
			return fmt.Errorf("insert flights: %w", err)
		}

		productRows := make([][]any, 0, len(products))
		for _, p := range products {
			productRows = append(productRows, []any{p.FlightNumber, p.ProductName, p.CategoryQuantity, p.UnitWeight})
		}
		if _, err := q.CopyFrom(ctx, pgx.Identifier{"flight_products"},
			[]string{"flight_number", "product_name", "category_quantity", "weight_kg"},
			pgx.CopyFromRows(productRows)); err != nil {
			return fmt.Errorf("insert flight products: %w", err)
		}
		return nil
	})
}
