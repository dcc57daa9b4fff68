package catalog

import (
	"context"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// CatalogUseCase consultas y recarga del catálogo de vuelos.
type CatalogUseCase struct {
	repo repository.CatalogRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(repo repository.CatalogRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

// ListFlights devuelve todos los vuelos.
func (uc *CatalogUseCase) ListFlights(ctx context.Context) ([]dto.FlightResponse, error) {
	flights, err := uc.repo.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FlightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, dto.FlightResponse{
			FlightNumber:  f.FlightNumber,
			Origin:        f.Origin,
			Destination:   f.Destination,
			DepartureTime: f.DepartureTime,
		})
	}
	return out, nil
}

// FlightProducts devuelve los productos de un vuelo. ErrNotFound si el vuelo no tiene productos.
func (uc *CatalogUseCase) FlightProducts(ctx context.Context, flightNumber string) ([]dto.FlightProductResponse, error) {
	products, err := uc.Products(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FlightProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.FlightProductResponse{
			FlightNumber:     p.FlightNumber,
			ProductName:      p.ProductName,
			CategoryQuantity: p.CategoryQuantity,
			WeightKg:         p.UnitWeight,
		})
	}
	return out, nil
}

// Products devuelve las entidades de producto de un vuelo (usado al iniciar una corrida).
func (uc *CatalogUseCase) Products(ctx context.Context, flightNumber string) ([]entity.CatalogProduct, error) {
	if flightNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	products, err := uc.repo.ProductsByFlight(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNotFound
	}
	return products, nil
}

// Replace reemplaza el catálogo completo.
func (uc *CatalogUseCase) Replace(ctx context.Context, flights []entity.Flight, products []entity.CatalogProduct) error {
	return uc.repo.ReplaceAll(ctx, flights, products)
}
