package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo libro de lotes sobre PostgreSQL. Withdraw bloquea los lotes del producto con
// SELECT ... FOR UPDATE dentro de una transacción y aplica el mismo plan FEFO que la versión en memoria.
type LotRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewLotRepository construye el adaptador de lotes.
func NewLotRepository(pool *pgxpool.Pool) *LotRepo {
	return &LotRepo{pool: pool, tx: NewTxRunner(pool)}
}

// AddLot inserta el lote y sus unidades individuales.
func (r *LotRepo) AddLot(ctx context.Context, lot *entity.Lot) error {
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
	createdAt := lot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return r.tx.Run(ctx, func(q Querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO lots (lot_id, product_name, expiry_date, quantity, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING seq`,
			lot.LotID, lot.ProductName, lot.ExpiryDate, lot.Quantity, createdAt,
		).Scan(&lot.Seq)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert lot: %w", err)
		}
		if len(lot.UnitIDs) == 0 {
			return nil
		}
		rows := make([][]any, 0, len(lot.UnitIDs))
		for i, id := range lot.UnitIDs {
			rows = append(rows, []any{id, lot.LotID, i})
		}
		if _, err := q.CopyFrom(ctx, pgx.Identifier{"lot_units"}, []string{"unit_id", "lot_id", "position"}, pgx.CopyFromRows(rows)); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert lot units: %w", err)
		}
		return nil
	})
}

// Withdraw retira count unidades de product siguiendo FEFO (todo o nada).
func (r *LotRepo) Withdraw(ctx context.Context, product string, count int) ([]entity.Consumption, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var plan []entity.Consumption
	err := r.tx.Run(ctx, func(q Querier) error {
		lots, err := lockProductLots(ctx, q, product)
		if err != nil {
			return err
		}
		plan, err = inventory.PlanWithdrawal(lots, count)
		if err != nil {
			return err
		}
		for i := range plan {
			ids, err := takeUnits(ctx, q, plan[i].LotID, plan[i].UnitsTaken)
			if err != nil {
				return err
			}
			plan[i].UnitIDs = ids
			if err := decrementLot(ctx, q, plan[i].LotID, plan[i].UnitsTaken); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RemoveLot elimina un lote completo (sus unidades caen en cascada).
func (r *LotRepo) RemoveLot(ctx context.Context, lotID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lots WHERE lot_id = $1`, lotID)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveUnit elimina una unidad y descuenta su lote.
func (r *LotRepo) RemoveUnit(ctx context.Context, unitID string) error {
	return r.tx.Run(ctx, func(q Querier) error {
		var lotID string
		err := q.QueryRow(ctx, `DELETE FROM lot_units WHERE unit_id = $1 RETURNING lot_id`, unitID).Scan(&lotID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete unit: %w", err)
		}
		return decrementLot(ctx, q, lotID, 1)
	})
}

// Remove intenta primero como lot_id y luego como id de unidad.
func (r *LotRepo) Remove(ctx context.Context, identifier string) error {
	err := r.RemoveLot(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return r.RemoveUnit(ctx, identifier)
	}
	return err
}

// Summary agrupa las cantidades por rango de caducidad respecto a ref.
func (r *LotRepo) Summary(ctx context.Context, ref time.Time) (map[inventory.Band]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT expiry_date, quantity FROM lots`)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	out := inventory.EmptySummary()
	for rows.Next() {
		var expiry time.Time
		var qty int
		if err := rows.Scan(&expiry, &qty); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out[inventory.ClassifyAt(expiry, ref)] += qty
	}
	return out, rows.Err()
}

// Reorder no hace nada: las consultas ya devuelven los lotes ordenados por caducidad.
func (r *LotRepo) Reorder(context.Context) error {
	return nil
}

// GetLot devuelve el lote con sus unidades o ErrNotFound.
func (r *LotRepo) GetLot(ctx context.Context, lotID string) (*entity.Lot, error) {
	var l entity.Lot
	err := r.pool.QueryRow(ctx, `
		SELECT lot_id, product_name, expiry_date, quantity, seq, created_at
		FROM lots WHERE lot_id = $1`, lotID,
	).Scan(&l.LotID, &l.ProductName, &l.ExpiryDate, &l.Quantity, &l.Seq, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	units, err := r.unitsByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	l.UnitIDs = units[lotID]
	return &l, nil
}

// ListLots devuelve todos los lotes por producto y orden de inserción.
func (r *LotRepo) ListLots(ctx context.Context) ([]*entity.Lot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lot_id, product_name, expiry_date, quantity, seq, created_at
		FROM lots ORDER BY product_name, seq`)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	lots, err := scanLots(rows)
	if err != nil {
		return nil, err
	}
	units, err := r.unitsByLot(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		l.UnitIDs = units[l.LotID]
	}
	return lots, nil
}

// ListUnits devuelve una fila por unidad rastreada.
func (r *LotRepo) ListUnits(ctx context.Context) ([]entity.UnitRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.lot_id, u.unit_id, l.product_name, l.expiry_date
		FROM lot_units u JOIN lots l ON l.lot_id = u.lot_id
		ORDER BY l.product_name, l.seq, u.position`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	out := make([]entity.UnitRecord, 0)
	for rows.Next() {
		var u entity.UnitRecord
		if err := rows.Scan(&u.LotID, &u.UnitID, &u.ProductName, &u.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Available suma la cantidad disponible de un producto.
func (r *LotRepo) Available(ctx context.Context, product string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM lots WHERE product_name = $1`, product).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("available: %w", err)
	}
	return total, nil
}

// unitsByLot carga los IDs de unidad por lote (todos si lotID es vacío), en orden de posición.
func (r *LotRepo) unitsByLot(ctx context.Context, lotID string) (map[string][]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lot_id, unit_id FROM lot_units
		WHERE $1 = '' OR lot_id = $1
		ORDER BY lot_id, position`, lotID)
	if err != nil {
		return nil, fmt.Errorf("list lot units: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var lot, unit string
		if err := rows.Scan(&lot, &unit); err != nil {
			return nil, fmt.Errorf("scan lot unit: %w", err)
		}
		out[lot] = append(out[lot], unit)
	}
	return out, rows.Err()
}

// lockProductLots bloquea (FOR UPDATE) los lotes con stock del producto.
func lockProductLots(ctx context.Context, q Querier, product string) ([]*entity.Lot, error) {
	rows, err := q.Query(ctx, `
		SELECT lot_id, product_name, expiry_date, quantity, seq, created_at
		FROM lots
		WHERE product_name = $1 AND quantity > 0
		ORDER BY expiry_date, seq
		FOR UPDATE`, product)
	if err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}
	return scanLots(rows)
}

// takeUnits borra las n unidades más antiguas del lote y devuelve sus IDs.
func takeUnits(ctx context.Context, q Querier, lotID string, n int) ([]string, error) {
	rows, err := q.Query(ctx, `
		DELETE FROM lot_units
		WHERE unit_id IN (
			SELECT unit_id FROM lot_units WHERE lot_id = $1 ORDER BY position LIMIT $2
		)
		RETURNING unit_id, position`, lotID, n)
	if err != nil {
		return nil, fmt.Errorf("take units: %w", err)
	}
	defer rows.Close()

	type unit struct {
		id  string
		pos int
	}
	var taken []unit
	for rows.Next() {
		var u unit
		if err := rows.Scan(&u.id, &u.pos); err != nil {
			return nil, fmt.Errorf("scan taken unit: %w", err)
		}
		taken = append(taken, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(taken, func(i, j int) bool { return taken[i].pos < taken[j].pos })
	ids := make([]string, 0, len(taken))
	for _, u := range taken {
		ids = append(ids, u.id)
	}
	return ids, nil
}

// decrementLot descuenta n unidades y borra el lote si queda en cero.
func decrementLot(ctx context.Context, q Querier, lotID string, n int) error {
	var remaining int
	err := q.QueryRow(ctx, `
		UPDATE lots SET quantity = quantity - $2 WHERE lot_id = $1 RETURNING quantity`, lotID, n,
	).Scan(&remaining)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("decrement lot: %w", err)
	}
	if remaining == 0 {
		if _, err := q.Exec(ctx, `DELETE FROM lots WHERE lot_id = $1`, lotID); err != nil {
			return fmt.Errorf("delete empty lot: %w", err)
		}
	}
	return nil
}

func scanLots(rows pgx.Rows) ([]*entity.Lot, error) {
	defer rows.Close()
	out := make([]*entity.Lot, 0)
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.LotID, &l.ProductName, &l.ExpiryDate, &l.Quantity, &l.Seq, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
