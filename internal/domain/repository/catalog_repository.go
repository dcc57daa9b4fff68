package repository

import (
	"context"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// CatalogRepository define el puerto del catálogo de vuelos y productos por vuelo.
type CatalogRepository interface {
	ListFlights(ctx context.Context) ([]entity.Flight, error)
	ProductsByFlight(ctx context.Context, flightNumber string) ([]entity.CatalogProduct, error)
	// ListProducts devuelve los productos de todos los vuelos.
	ListProducts(ctx context.Context) ([]entity.CatalogProduct, error)
	// ReplaceAll reemplaza el catálogo completo (carga desde CSV).
	ReplaceAll(ctx context.Context, flights []entity.Flight, products []entity.CatalogProduct) error
}
