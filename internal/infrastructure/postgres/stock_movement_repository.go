package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const stockMovementColumns = `id, lot_id, product_id, kind, quantity, unit_cost, ref_kind, ref_id, created_at, created_by`

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, lot_id, product_id, kind, quantity, unit_cost, ref_kind, ref_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	refID := (*string)(nil)
	if movement.RefID != "" {
		refID = &movement.RefID
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.LotID, movement.ProductID, movement.Kind,
		movement.Quantity, movement.UnitCost, movement.RefKind, refID,
		movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByLot lista los movimientos de un lote, más reciente primero.
func (r *StockMovementRepo) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements WHERE lot_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, lotID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by lot: %w", err)
	}
	return scanMovements(rows)
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	return scanMovements(rows)
}

// SumOnHandDeltas suma los deltas que afectan existencia (excluye reserve-release).
func (r *StockMovementRepo) SumOnHandDeltas(ctx context.Context, lotID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE lot_id = $1 AND kind <> $2`
	var sum int64
	err := r.q.QueryRow(ctx, query, lotID, entity.MovementKindReserveRelease).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movement deltas: %w", err)
	}
	return sum, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var refID *string
		if err := rows.Scan(&m.ID, &m.LotID, &m.ProductID, &m.Kind,
			&m.Quantity, &m.UnitCost, &m.RefKind, &refID, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		if refID != nil {
			m.RefID = *refID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
