package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// CatalogRepository catálogo de vuelos en memoria.
type CatalogRepository struct {
	mu       sync.RWMutex
	flights  []entity.Flight
	products map[string][]entity.CatalogProduct
}

// NewCatalogRepository crea un catálogo vacío.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{products: make(map[string][]entity.CatalogProduct)}
}

// Verify interface compliance
var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// ListFlights devuelve los vuelos en orden de carga.
func (r *CatalogRepository) ListFlights(_ context.Context) ([]entity.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.Flight{}, r.flights...), nil
}

// ProductsByFlight devuelve los productos del vuelo (vacío si no existe).
func (r *CatalogRepository) ProductsByFlight(_ context.Context, flightNumber string) ([]entity.CatalogProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.CatalogProduct{}, r.products[flightNumber]...), nil
}

// ListProducts devuelve los productos de todos los vuelos, en el orden de los vuelos.
func (r *CatalogRepository) ListProducts(_ context.Context) ([]entity.CatalogProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.CatalogProduct, 0)
	for _, f := range r.flights {
		out = append(out, r.products[f.FlightNumber]...)
	}
	return out, nil
}

// ReplaceAll reemplaza el catálogo. Un vuelo repetido conserva su primera aparición.
func (r *CatalogRepository) ReplaceAll(_ context.Context, flights []entity.Flight, products []entity.CatalogProduct) error {
	seen := make(map[string]bool, len(flights))
	fl := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		if seen[f.FlightNumber] {
			continue
		}
		seen[f.FlightNumber] = true
		fl = append(fl, f)
	}
	byFlight := make(map[string][]entity.CatalogProduct)
	for _, p := range products {
		byFlight[p.FlightNumber] = append(byFlight[p.FlightNumber], p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights = fl
	r.products = byFlight
	return nil
}
