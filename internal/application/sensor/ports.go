package sensor

import (
	"context"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// StockWithdrawer descuenta unidades del libro de lotes (FEFO). repository.LotRepository lo cumple.
type StockWithdrawer interface {
	Withdraw(ctx context.Context, product string, count int) ([]entity.Consumption, error)
}

// SignalEvent aviso emitido cuando un sensor pasa a rojo.
type SignalEvent struct {
	FlightNumber   string    `json:"flight_number"`
	ProductName    string    `json:"product_name"`
	Signal         Signal    `json:"signal"`
	Reason         string    `json:"reason"`
	CurrentWeight  float64   `json:"current_weight"`
	ExpectedWeight float64   `json:"expected_weight"`
	UnitsRemaining int       `json:"units_remaining"`
	At             time.Time `json:"at"`
}

// Motivos de un SignalEvent.
const (
	ReasonNoStock = "no_stock"
	ReasonChange  = "unstable_change"
	ReasonTimeout = "timeout"
)

// SignalPublisher publica eventos de señal (p. ej. Redis pub/sub). Best-effort.
type SignalPublisher interface {
	Publish(ctx context.Context, ev SignalEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, SignalEvent) error { return nil }
