package entity

import "time"

// Lot representa un lote de unidades idénticas de un producto que comparten fecha de caducidad.
// Quantity nunca es negativa; UnitIDs guarda los identificadores individuales (uno por unidad).
type Lot struct {
	LotID       string
	ProductName string
	ExpiryDate  time.Time
	Quantity    int
	UnitIDs     []string
	Seq         uint64 // orden de inserción (desempate FEFO)
	CreatedAt   time.Time
}

// Clone devuelve una copia independiente del lote (incluye UnitIDs).
func (l *Lot) Clone() *Lot {
	if l == nil {
		return nil
	}
	cp := *l
	cp.UnitIDs = append([]string(nil), l.UnitIDs...)
	return &cp
}

// Consumption es una línea del resultado de un retiro FEFO: cuántas unidades salieron de qué lote.
type Consumption struct {
	LotID      string
	UnitsTaken int
	UnitIDs    []string // unidades individuales retiradas (vacío si el lote no las rastrea)
}

// UnitRecord es una unidad individual del inventario (vista plana por unidad).
type UnitRecord struct {
	LotID       string
	UnitID      string
	ProductName string
	ExpiryDate  time.Time
}
