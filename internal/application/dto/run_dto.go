package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReadingRequest body para POST /api/run/readings/:product (lectura cruda de la báscula, kg).
type ReadingRequest struct {
	Weight decimal.Decimal `json:"weight"`
}

// RunActionResponse respuesta de start/stop/take/put.
type RunActionResponse struct {
	Status       string                `json:"status"`
	Message      string                `json:"message"`
	Signal       string                `json:"signal,omitempty"`
	// Warning se llena cuando el sensor aceptó la toma pero el libro de lotes no pudo descontarla.
	Warning      string                `json:"warning,omitempty"`
	Consumptions []ConsumptionResponse `json:"consumptions,omitempty"`
}

// SensorStatus estado de un sensor para GET /api/run/status.
type SensorStatus struct {
	Signal         string          `json:"color"`
	CurrentWeight  decimal.Decimal `json:"current_weight"`
	ExpectedWeight decimal.Decimal `json:"expected_weight"`
	UnitsRemaining int             `json:"units_remaining"`
	Active         bool            `json:"active"`
}

// RunStatusResponse estado completo de la corrida.
type RunStatusResponse struct {
	FlightNumber string                  `json:"flight_number,omitempty"`
	Running      bool                    `json:"running"`
	StartedAt    *time.Time              `json:"started_at,omitempty"`
	SweepTicks   int64                   `json:"sweep_ticks"`
	Sensors      map[string]SensorStatus `json:"sensors"`
	Basket       map[string]int          `json:"basket"`
}
