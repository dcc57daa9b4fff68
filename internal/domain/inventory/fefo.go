package inventory

import (
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// PlanWithdrawal decide de qué lotes salen count unidades según FEFO (primero en caducar, primero en salir).
// No modifica los lotes: devuelve el plan en orden de consumo.
//
// Reglas:
//   - count <= 0 → ErrInvalidQuantity.
//   - Si la suma disponible (lotes con Quantity > 0) es menor que count → ErrInsufficientStock, sin plan.
//   - En cada paso se elige el lote con ExpiryDate más temprana (desempate: Seq menor) y se toma
//     min(restante, disponible del lote). El ciclo es iterativo: a lo sumo un paso por lote.
func PlanWithdrawal(lots []*entity.Lot, count int) ([]entity.Consumption, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	available := make([]int, len(lots))
	total := 0
	for i, l := range lots {
		if l.Quantity > 0 {
			available[i] = l.Quantity
			total += l.Quantity
		}
	}
	if total < count {
		return nil, domain.ErrInsufficientStock
	}

	plan := make([]entity.Consumption, 0, 2)
	remaining := count
	for remaining > 0 {
		pick := -1
		for i, l := range lots {
			if available[i] == 0 {
				continue
			}
			if pick < 0 || earlier(l, lots[pick]) {
				pick = i
			}
		}
		take := available[pick]
		if take > remaining {
			take = remaining
		}
		available[pick] -= take
		remaining -= take
		plan = append(plan, entity.Consumption{LotID: lots[pick].LotID, UnitsTaken: take})
	}
	return plan, nil
}

// earlier indica si a caduca antes que b (desempate por orden de inserción).
func earlier(a, b *entity.Lot) bool {
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.Before(b.ExpiryDate)
	}
	return a.Seq < b.Seq
}
