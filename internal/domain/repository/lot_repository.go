package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
)

// LotRepository define el puerto del libro de lotes (StockLedger).
// El almacenamiento concreto (memoria, PostgreSQL) es opaco para el núcleo.
type LotRepository interface {
	// AddLot agrega un lote nuevo. ErrInvalidQuantity si Quantity < 0.
	AddLot(ctx context.Context, lot *entity.Lot) error
	// Withdraw retira count unidades de product siguiendo FEFO (todo o nada).
	Withdraw(ctx context.Context, product string, count int) ([]entity.Consumption, error)
	RemoveLot(ctx context.Context, lotID string) error
	RemoveUnit(ctx context.Context, unitID string) error
	// Remove intenta primero como lot_id y luego como id de unidad individual.
	Remove(ctx context.Context, identifier string) error
	Summary(ctx context.Context, ref time.Time) (map[inventory.Band]int, error)
	Reorder(ctx context.Context) error

	GetLot(ctx context.Context, lotID string) (*entity.Lot, error)
	ListLots(ctx context.Context) ([]*entity.Lot, error)
	ListUnits(ctx context.Context) ([]entity.UnitRecord, error)
	Available(ctx context.Context, product string) (int, error)
}
