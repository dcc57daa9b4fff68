package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/memory"
)

func TestCatalogRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()

	require.NoError(t, repo.ReplaceAll(ctx,
		[]entity.Flight{{FlightNumber: "AM109"}, {FlightNumber: "AM110"}, {FlightNumber: "AM109", Origin: "dup"}},
		[]entity.CatalogProduct{
			{FlightNumber: "AM110", ProductName: "Water", CategoryQuantity: 6, UnitWeight: decimal.RequireFromString("0.6")},
			{FlightNumber: "AM109", ProductName: "Juice", CategoryQuantity: 10, UnitWeight: decimal.RequireFromString("0.5")},
		}))

	flights, err := repo.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Empty(t, flights[0].Origin, "el vuelo repetido conserva su primera aparición")

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Juice", products[0].ProductName)

	products, err = repo.ProductsByFlight(ctx, "XX000")
	require.NoError(t, err)
	assert.Empty(t, products)

	// Caso 2: reemplazar borra lo anterior.
	require.NoError(t, repo.ReplaceAll(ctx, nil, nil))
	flights, err = repo.ListFlights(ctx)
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestUserRepository(t *testing.T) {
	repo := memory.NewUserRepository()
	u := &entity.User{ID: "u1", Email: "Ana@StockPilot.io", Role: entity.RoleAdmin}
	require.NoError(t, repo.Create(u))

	assert.ErrorIs(t, repo.Create(&entity.User{ID: "u2", Email: "ana@stockpilot.io"}), domain.ErrDuplicate)
	assert.ErrorIs(t, repo.Create(&entity.User{ID: "u3"}), domain.ErrInvalidInput)

	got, err := repo.FindByEmail("ANA@stockpilot.io")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	got, err = repo.FindByEmail("nadie@stockpilot.io")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = repo.GetByID("u9")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
