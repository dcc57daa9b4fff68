package dto

import "time"

// CreateLotRequest body para POST /api/inventory/lots.
// ExpiryDays son días desde hoy; la caducidad se guarda como fecha (medianoche).
type CreateLotRequest struct {
	LotID       string `json:"lot_id"`
	Quantity    int    `json:"quantity"`
	ExpiryDays  int    `json:"expiry_days"`
	ProductName string `json:"product_name,omitempty"`
}

// UnitResponse una unidad individual dentro de un lote.
type UnitResponse struct {
	UnitID     string `json:"unit_id"`
	ExpiryDate string `json:"expiry_date"`
}

// LotResponse salida de un lote con sus unidades.
type LotResponse struct {
	LotID       string         `json:"lot_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	ExpiryDate  string         `json:"expiry_date"`
	Band        string         `json:"band"`
	Units       []UnitResponse `json:"units"`
}

// InventoryItem una fila del inventario completo (una por unidad).
type InventoryItem struct {
	LotID       string `json:"lot_id"`
	UnitID      string `json:"unit_id"`
	ExpiryDate  string `json:"expiry_date"`
	ProductName string `json:"product_name"`
}

// ProductLotView lote dentro de la vista agrupada por producto.
type ProductLotView struct {
	LotID      string   `json:"lot_id"`
	Quantity   int      `json:"quantity"`
	ExpiryDate string   `json:"expiry_date"`
	Band       string   `json:"band"`
	UnitIDs    []string `json:"unit_ids"`
}

// ProductInventory inventario de un producto con sus lotes en orden FEFO.
type ProductInventory struct {
	ProductName   string           `json:"product_name"`
	TotalQuantity int              `json:"total_quantity"`
	Lots          []ProductLotView `json:"lots"`
}

// LotSummaryItem resumen por lote.
type LotSummaryItem struct {
	LotID       string `json:"lot_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	ExpiryDate  string `json:"expiry_date"`
}

// InventorySummary totales y conteo por rango de caducidad (short/upcoming/distant).
type InventorySummary struct {
	TotalProducts int              `json:"total_products"`
	TotalLots     int              `json:"total_lots"`
	Bands         map[string]int   `json:"bands"`
	Lots          []LotSummaryItem `json:"lots"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// DeleteResponse salida de DELETE /api/inventory/lots/:identifier.
type DeleteResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	RemainingInventory int    `json:"remaining_inventory"`
}

// WithdrawRequest body para POST /api/inventory/withdrawals.
type WithdrawRequest struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
}

// ConsumptionResponse una línea del retiro FEFO.
type ConsumptionResponse struct {
	LotID      string   `json:"lot_id"`
	UnitsTaken int      `json:"units_taken"`
	UnitIDs    []string `json:"unit_ids,omitempty"`
}

// WithdrawResponse resultado del retiro FEFO.
type WithdrawResponse struct {
	ProductName  string                `json:"product_name"`
	Count        int                   `json:"count"`
	Consumptions []ConsumptionResponse `json:"consumptions"`
}
