package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

var _ repository.LotRepository = (*Ledger)(nil)

// Ledger es el libro de lotes en memoria (StockLedger) con retiro FEFO.
//
// Bloqueo: mu protege el mapa de grupos; cada grupo (producto) tiene su propio mutex.
// Orden de adquisición: Ledger.mu y luego lotGroup.mu. Withdraw suelta Ledger.mu antes de tomar
// el mutex del grupo, así dos retiros de productos distintos no se bloquean entre sí.
type Ledger struct {
	mu     sync.RWMutex
	groups map[string]*lotGroup
	seq    uint64
}

type lotGroup struct {
	mu   sync.Mutex
	lots []*entity.Lot // orden de inserción (o el de Reorder)
}

// NewLedger construye un libro vacío.
func NewLedger() *Ledger {
	return &Ledger{groups: make(map[string]*lotGroup)}
}

// AddLot agrega un lote. ErrInvalidQuantity si Quantity < 0; ErrDuplicate si el lot_id ya existe.
// Un lote con cantidad cero no se guarda: sin unidades no existe en el libro.
func (l *Ledger) AddLot(_ context.Context, lot *entity.Lot) error {
	if lot == nil || lot.LotID == "" || lot.ProductName == "" {
		return domain.ErrInvalidInput
	}
	if lot.Quantity < 0 {
		return domain.ErrInvalidQuantity
	}
	if len(lot.UnitIDs) > 0 && len(lot.UnitIDs) != lot.Quantity {
		return domain.ErrInvalidQuantity
	}
	if lot.Quantity == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, g := range l.groups {
		g.mu.Lock()
		_, found := g.find(lot.LotID)
		g.mu.Unlock()
		if found {
			return domain.ErrDuplicate
		}
	}

	l.seq++
	cp := lot.Clone()
	cp.Seq = l.seq
	lot.Seq = cp.Seq

	g, ok := l.groups[cp.ProductName]
	if !ok {
		g = &lotGroup{}
		l.groups[cp.ProductName] = g
	}
	g.mu.Lock()
	g.lots = append(g.lots, cp)
	g.mu.Unlock()
	return nil
}

// Withdraw retira count unidades de product (FEFO, todo o nada).
// La verificación de disponibilidad y el descuento ocurren bajo el mutex del producto.
func (l *Ledger) Withdraw(_ context.Context, product string, count int) ([]entity.Consumption, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	g := l.group(product)
	if g == nil {
		return nil, domain.ErrInsufficientStock
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	plan, err := domaininv.PlanWithdrawal(g.lots, count)
	if err != nil {
		return nil, err
	}
	for i := range plan {
		idx, _ := g.find(plan[i].LotID)
		lot := g.lots[idx]
		lot.Quantity -= plan[i].UnitsTaken
		if n := plan[i].UnitsTaken; len(lot.UnitIDs) >= n {
			plan[i].UnitIDs = append([]string(nil), lot.UnitIDs[:n]...)
			lot.UnitIDs = lot.UnitIDs[n:]
		}
	}
	g.compact()
	return plan, nil
}

// RemoveLot elimina un lote completo.
func (l *Ledger) RemoveLot(_ context.Context, lotID string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.groups {
		g.mu.Lock()
		idx, found := g.find(lotID)
		if found {
			g.lots = append(g.lots[:idx], g.lots[idx+1:]...)
		}
		g.mu.Unlock()
		if found {
			return nil
		}
	}
	return domain.ErrNotFound
}

// RemoveUnit elimina una unidad individual; el lote pierde una unidad y desaparece si queda en cero.
func (l *Ledger) RemoveUnit(_ context.Context, unitID string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.groups {
		g.mu.Lock()
		found := g.removeUnit(unitID)
		g.mu.Unlock()
		if found {
			return nil
		}
	}
	return domain.ErrNotFound
}

// Remove acepta un lot_id o un id individual (en ese orden).
func (l *Ledger) Remove(ctx context.Context, identifier string) error {
	err := l.RemoveLot(ctx, identifier)
	if err == domain.ErrNotFound {
		return l.RemoveUnit(ctx, identifier)
	}
	return err
}

// Summary agrupa la cantidad de todos los lotes por rango de caducidad respecto a ref.
func (l *Ledger) Summary(_ context.Context, ref time.Time) (map[domaininv.Band]int, error) {
	out := domaininv.EmptySummary()
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.groups {
		g.mu.Lock()
		for _, lot := range g.lots {
			out[domaininv.ClassifyAt(lot.ExpiryDate, ref)] += lot.Quantity
		}
		g.mu.Unlock()
	}
	return out, nil
}

// Reorder ordena los lotes de cada producto por caducidad ascendente (solo presentación).
func (l *Ledger) Reorder(_ context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.groups {
		g.mu.Lock()
		sort.SliceStable(g.lots, func(i, j int) bool {
			return g.lots[i].ExpiryDate.Before(g.lots[j].ExpiryDate)
		})
		g.mu.Unlock()
	}
	return nil
}

// GetLot devuelve una copia del lote o ErrNotFound.
func (l *Ledger) GetLot(_ context.Context, lotID string) (*entity.Lot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, g := range l.groups {
		g.mu.Lock()
		idx, found := g.find(lotID)
		var cp *entity.Lot
		if found {
			cp = g.lots[idx].Clone()
		}
		g.mu.Unlock()
		if found {
			return cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListLots devuelve copias de todos los lotes, por producto y luego en el orden almacenado.
func (l *Ledger) ListLots(_ context.Context) ([]*entity.Lot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.groups))
	for name := range l.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*entity.Lot, 0)
	for _, name := range names {
		g := l.groups[name]
		g.mu.Lock()
		for _, lot := range g.lots {
			out = append(out, lot.Clone())
		}
		g.mu.Unlock()
	}
	return out, nil
}

// ListUnits devuelve una fila por unidad individual rastreada.
func (l *Ledger) ListUnits(ctx context.Context) ([]entity.UnitRecord, error) {
	lots, err := l.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.UnitRecord, 0)
	for _, lot := range lots {
		for _, id := range lot.UnitIDs {
			out = append(out, entity.UnitRecord{
				LotID:       lot.LotID,
				UnitID:      id,
				ProductName: lot.ProductName,
				ExpiryDate:  lot.ExpiryDate,
			})
		}
	}
	return out, nil
}

// Available devuelve la cantidad total disponible de un producto.
func (l *Ledger) Available(_ context.Context, product string) (int, error) {
	g := l.group(product)
	if g == nil {
		return 0, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, lot := range g.lots {
		total += lot.Quantity
	}
	return total, nil
}

func (l *Ledger) group(product string) *lotGroup {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.groups[product]
}

// find busca un lote por ID. Requiere g.mu tomado.
func (g *lotGroup) find(lotID string) (int, bool) {
	for i, lot := range g.lots {
		if lot.LotID == lotID {
			return i, true
		}
	}
	return -1, false
}

// removeUnit quita una unidad por ID. Requiere g.mu tomado.
func (g *lotGroup) removeUnit(unitID string) bool {
	for _, lot := range g.lots {
		for i, id := range lot.UnitIDs {
			if id != unitID {
				continue
			}
			lot.UnitIDs = append(lot.UnitIDs[:i], lot.UnitIDs[i+1:]...)
			lot.Quantity--
			g.compact()
			return true
		}
	}
	return false
}

// compact elimina los lotes que quedaron en cero. Requiere g.mu tomado.
func (g *lotGroup) compact() {
	kept := g.lots[:0]
	for _, lot := range g.lots {
		if lot.Quantity > 0 {
			kept = append(kept, lot)
		}
	}
	for i := len(kept); i < len(g.lots); i++ {
		g.lots[i] = nil
	}
	g.lots = kept
}
