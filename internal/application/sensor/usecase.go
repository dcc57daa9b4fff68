package sensor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	appinv "github.com/jhoicas/stockpilot-api/internal/application/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// ProductSource resuelve los productos de un vuelo (catálogo).
type ProductSource interface {
	Products(ctx context.Context, flightNumber string) ([]entity.CatalogProduct, error)
}

// RunUseCase adapta la corrida de sensores a los DTOs de la API.
type RunUseCase struct {
	run     *Run
	catalog ProductSource
}

// NewRunUseCase construye el caso de uso.
func NewRunUseCase(run *Run, catalog ProductSource) *RunUseCase {
	return &RunUseCase{run: run, catalog: catalog}
}

// Start inicia una corrida con los productos del vuelo.
func (uc *RunUseCase) Start(ctx context.Context, flightNumber string) (*dto.RunActionResponse, error) {
	products, err := uc.catalog.Products(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	specs := make([]ProductSpec, 0, len(products))
	for _, p := range products {
		specs = append(specs, ProductSpec{
			ProductName: p.ProductName,
			UnitWeight:  p.UnitWeight.InexactFloat64(),
			UnitCount:   p.CategoryQuantity,
		})
	}
	if err := uc.run.Start(ctx, flightNumber, specs); err != nil {
		return nil, err
	}
	return &dto.RunActionResponse{Status: "ok", Message: fmt.Sprintf("Run started for flight %s", flightNumber)}, nil
}

// Stop detiene la corrida actual.
func (uc *RunUseCase) Stop() *dto.RunActionResponse {
	uc.run.Stop()
	return &dto.RunActionResponse{Status: "ok", Message: "Run stopped"}
}

// TakeOne toma una unidad del producto.
func (uc *RunUseCase) TakeOne(ctx context.Context, product string) (*dto.RunActionResponse, error) {
	res, err := uc.run.TakeOne(ctx, product)
	if err != nil {
		return nil, err
	}
	return &dto.RunActionResponse{
		Status:       "ok",
		Message:      fmt.Sprintf("Taken one %s", product),
		Signal:       string(res.Signal),
		Warning:      res.LedgerWarning,
		Consumptions: appinv.ToConsumptionResponses(res.Consumptions),
	}, nil
}

// PutOne devuelve una unidad del producto.
func (uc *RunUseCase) PutOne(ctx context.Context, product string) (*dto.RunActionResponse, error) {
	res, err := uc.run.PutOne(ctx, product)
	if err != nil {
		return nil, err
	}
	return &dto.RunActionResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Put one %s", product),
		Signal:  string(res.Signal),
	}, nil
}

// Observe registra una lectura cruda de báscula.
func (uc *RunUseCase) Observe(ctx context.Context, product string, in dto.ReadingRequest) (*dto.SensorStatus, error) {
	snap, err := uc.run.Observe(ctx, product, in.Weight.InexactFloat64())
	if err != nil {
		return nil, err
	}
	st := toSensorStatus(snap)
	return &st, nil
}

// Status estado de la corrida con pesos redondeados a 2 decimales.
func (uc *RunUseCase) Status() *dto.RunStatusResponse {
	st := uc.run.Status()
	out := &dto.RunStatusResponse{
		FlightNumber: st.FlightNumber,
		Running:      st.Running,
		SweepTicks:   st.SweepTicks,
		Sensors:      make(map[string]dto.SensorStatus, len(st.Sensors)),
		Basket:       st.Basket,
	}
	if !st.StartedAt.IsZero() {
		started := st.StartedAt
		out.StartedAt = &started
	}
	for _, s := range st.Sensors {
		out.Sensors[s.ProductName] = toSensorStatus(s)
	}
	return out
}

func toSensorStatus(s Snapshot) dto.SensorStatus {
	return dto.SensorStatus{
		Signal:         string(s.Signal),
		CurrentWeight:  decimal.NewFromFloat(s.CurrentWeight).Round(2),
		ExpectedWeight: decimal.NewFromFloat(s.ExpectedWeight).Round(2),
		UnitsRemaining: s.UnitsRemaining,
		Active:         s.Active,
	}
}
