package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// DefaultProductName se usa cuando un lote llega sin nombre de producto.
const DefaultProductName = "Producto"

// DateLayout formato de fecha de caducidad en las respuestas.
const DateLayout = "2006-01-02"

// LotUseCase casos de uso del inventario por lotes: alta, consulta, borrado, retiro FEFO y rotación.
type LotUseCase struct {
	lots   repository.LotRepository
	now    Clock
	unitID UnitIDFunc
}

// NewLotUseCase construye el caso de uso. clock nil usa time.Now.
func NewLotUseCase(lots repository.LotRepository, clock Clock) *LotUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &LotUseCase{lots: lots, now: clock, unitID: ShortID}
}

// WithUnitIDs reemplaza el generador de IDs de unidad (tests, semillas deterministas).
func (uc *LotUseCase) WithUnitIDs(fn UnitIDFunc) *LotUseCase {
	if fn != nil {
		uc.unitID = fn
	}
	return uc
}

// CreateLot crea un lote con Quantity unidades individuales que caducan en ExpiryDays días.
func (uc *LotUseCase) CreateLot(ctx context.Context, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	lotID := in.LotID
	if lotID == "" {
		lotID = "LOT-" + ShortID()
	}
	product := in.ProductName
	if product == "" {
		product = DefaultProductName
	}

	now := uc.now()
	y, m, d := now.AddDate(0, 0, in.ExpiryDays).Date()
	expiry := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	ids := make([]string, in.Quantity)
	for i := range ids {
		ids[i] = uc.unitID()
	}
	lot := &entity.Lot{
		LotID:       lotID,
		ProductName: product,
		ExpiryDate:  expiry,
		Quantity:    in.Quantity,
		UnitIDs:     ids,
		CreatedAt:   now,
	}
	if err := uc.lots.AddLot(ctx, lot); err != nil {
		return nil, err
	}
	return uc.toLotResponse(lot), nil
}

// GetLot devuelve un lote con sus unidades ordenadas por ID.
func (uc *LotUseCase) GetLot(ctx context.Context, lotID string) (*dto.LotResponse, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	lot, err := uc.lots.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := uc.toLotResponse(lot)
	sort.Slice(out.Units, func(i, j int) bool { return out.Units[i].UnitID < out.Units[j].UnitID })
	return out, nil
}

// Delete elimina un lote completo o una unidad individual y devuelve cuántas unidades quedan.
func (uc *LotUseCase) Delete(ctx context.Context, identifier string) (*dto.DeleteResponse, error) {
	if identifier == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.lots.Remove(ctx, identifier); err != nil {
		return nil, err
	}
	units, err := uc.lots.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteResponse{
		Status:             "success",
		Message:            fmt.Sprintf("Deleted %s", identifier),
		RemainingInventory: len(units),
	}, nil
}

// Inventory devuelve una fila por unidad, ordenada por producto, lote e ID.
func (uc *LotUseCase) Inventory(ctx context.Context) ([]dto.InventoryItem, error) {
	units, err := uc.lots.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItem, 0, len(units))
	for _, u := range units {
		out = append(out, dto.InventoryItem{
			LotID:       u.LotID,
			UnitID:      u.UnitID,
			ExpiryDate:  u.ExpiryDate.Format(DateLayout),
			ProductName: u.ProductName,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if a.LotID != b.LotID {
			return a.LotID < b.LotID
		}
		return a.UnitID < b.UnitID
	})
	return out, nil
}

// InventoryPage pagina Inventory. ErrInvalidInput si limit u offset están fuera de rango.
func (uc *LotUseCase) InventoryPage(ctx context.Context, page dto.PageRequest) ([]dto.InventoryItem, dto.PageResponse, error) {
	if !page.Valid() {
		return nil, dto.PageResponse{}, domain.ErrInvalidInput
	}
	items, err := uc.Inventory(ctx)
	if err != nil {
		return nil, dto.PageResponse{}, err
	}
	start, end := page.Bounds(len(items))
	return items[start:end], dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}, nil
}

// ByProduct agrupa los lotes por producto; dentro de cada producto los lotes van en orden FEFO.
func (uc *LotUseCase) ByProduct(ctx context.Context) ([]dto.ProductInventory, error) {
	lots, err := uc.lots.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	sortFEFO(lots)
	ref := uc.now()

	out := make([]dto.ProductInventory, 0)
	index := make(map[string]int)
	for _, lot := range lots {
		i, ok := index[lot.ProductName]
		if !ok {
			i = len(out)
			index[lot.ProductName] = i
			out = append(out, dto.ProductInventory{ProductName: lot.ProductName, Lots: []dto.ProductLotView{}})
		}
		out[i].TotalQuantity += lot.Quantity
		out[i].Lots = append(out[i].Lots, dto.ProductLotView{
			LotID:      lot.LotID,
			Quantity:   lot.Quantity,
			ExpiryDate: lot.ExpiryDate.Format(DateLayout),
			Band:       string(domaininv.ClassifyAt(lot.ExpiryDate, ref)),
			UnitIDs:    lot.UnitIDs,
		})
	}
	return out, nil
}

// Summary totales del inventario y conteo de unidades por rango de caducidad.
func (uc *LotUseCase) Summary(ctx context.Context) (*dto.InventorySummary, error) {
	ref := uc.now()
	bands, err := uc.lots.Summary(ctx, ref)
	if err != nil {
		return nil, err
	}
	lots, err := uc.lots.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lots, func(i, j int) bool { return lots[i].LotID < lots[j].LotID })

	out := &dto.InventorySummary{
		Bands:       make(map[string]int, len(bands)),
		Lots:        make([]dto.LotSummaryItem, 0, len(lots)),
		GeneratedAt: ref,
	}
	for b, n := range bands {
		out.Bands[string(b)] = n
	}
	for _, lot := range lots {
		out.TotalProducts += lot.Quantity
		out.Lots = append(out.Lots, dto.LotSummaryItem{
			LotID:       lot.LotID,
			ProductName: lot.ProductName,
			Quantity:    lot.Quantity,
			ExpiryDate:  lot.ExpiryDate.Format(DateLayout),
		})
	}
	out.TotalLots = len(lots)
	return out, nil
}

// Withdraw retira Count unidades del producto siguiendo FEFO (todo o nada).
func (uc *LotUseCase) Withdraw(ctx context.Context, in dto.WithdrawRequest) (*dto.WithdrawResponse, error) {
	if in.ProductName == "" {
		return nil, domain.ErrInvalidInput
	}
	got, err := uc.lots.Withdraw(ctx, in.ProductName, in.Count)
	if err != nil {
		return nil, err
	}
	return &dto.WithdrawResponse{
		ProductName:  in.ProductName,
		Count:        in.Count,
		Consumptions: ToConsumptionResponses(got),
	}, nil
}

// Rotate reordena los lotes almacenados por caducidad (solo presentación).
func (uc *LotUseCase) Rotate(ctx context.Context) error {
	return uc.lots.Reorder(ctx)
}

// ToConsumptionResponses convierte el resultado de un retiro a DTOs.
func ToConsumptionResponses(in []entity.Consumption) []dto.ConsumptionResponse {
	out := make([]dto.ConsumptionResponse, 0, len(in))
	for _, c := range in {
		out = append(out, dto.ConsumptionResponse{LotID: c.LotID, UnitsTaken: c.UnitsTaken, UnitIDs: c.UnitIDs})
	}
	return out
}

func (uc *LotUseCase) toLotResponse(lot *entity.Lot) *dto.LotResponse {
	expiry := lot.ExpiryDate.Format(DateLayout)
	units := make([]dto.UnitResponse, 0, len(lot.UnitIDs))
	for _, id := range lot.UnitIDs {
		units = append(units, dto.UnitResponse{UnitID: id, ExpiryDate: expiry})
	}
	return &dto.LotResponse{
		LotID:       lot.LotID,
		ProductName: lot.ProductName,
		Quantity:    lot.Quantity,
		ExpiryDate:  expiry,
		Band:        string(domaininv.ClassifyAt(lot.ExpiryDate, uc.now())),
		Units:       units,
	}
}

func sortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.Seq < b.Seq
	})
}
