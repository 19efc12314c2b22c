package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
// Las operaciones de cantidad son UPDATEs condicionales de una sola sentencia:
// la condición en el WHERE reemplaza el leer-calcular-escribir y hace imposible
// que dos reservas concurrentes pasen del disponible.
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const stockLotColumns = `id, product_id, lot_code, expiry_date, on_hand, reserved, unit_cost, received_at, updated_at`

// Create persiste un lote nuevo.
func (r *StockLotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (id, product_id, lot_code, expiry_date, on_hand, reserved, unit_cost, received_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotCode, lot.ExpiryDate,
		lot.OnHand, lot.Reserved, lot.UnitCost, lot.ReceivedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *StockLotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get stock lot")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get stock lot for update")
}

// GetByProductAndCode busca un lote por producto y código de lote.
func (r *StockLotRepo) GetByProductAndCode(ctx context.Context, productID, lotCode string) (*entity.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE product_id = $1 AND lot_code = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, productID, lotCode), "get stock lot by code")
}

// ListByProduct lista los lotes de un producto, vencimiento más próximo primero.
func (r *StockLotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + stockLotColumns + `
		FROM stock_lots WHERE product_id = $1
		ORDER BY expiry_date ASC NULLS LAST, received_at ASC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LotCode, &l.ExpiryDate,
			&l.OnHand, &l.Reserved, &l.UnitCost, &l.ReceivedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Reserve incrementa reserved solo si el disponible alcanza, en una sola
// sentencia atómica. Cero filas afectadas = sin disponible (o lote inexistente).
func (r *StockLotRepo) Reserve(ctx context.Context, lotID string, qty int64) error {
	query := `
		UPDATE stock_lots
		SET reserved = reserved + $2, updated_at = now()
		WHERE id = $1 AND on_hand - reserved >= $2`
	tag, err := r.q.Exec(ctx, query, lotID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, lotID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientAvailable
	}
	return nil
}

// Release decrementa reserved con tope en 0 y devuelve la cantidad liberada.
// Usa la fila bloqueada para calcular el recorte; siempre dentro de tx.
func (r *StockLotRepo) Release(ctx context.Context, lotID string, qty int64) (int64, error) {
	lot, err := r.GetForUpdate(ctx, lotID)
	if err != nil {
		return 0, err
	}
	if lot == nil {
		return 0, domain.ErrNotFound
	}
	released := qty
	if lot.Reserved < released {
		released = lot.Reserved
	}
	if released == 0 {
		return 0, nil
	}
	query := `
		UPDATE stock_lots
		SET reserved = GREATEST(reserved - $2, 0), updated_at = now()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, lotID, released); err != nil {
		return 0, fmt.Errorf("release stock lot: %w", err)
	}
	return released, nil
}

// Consume descuenta existencia y hold en una sola sentencia. La condición
// on_hand >= qty evita que el consumo deje reserved > on_hand o existencia
// negativa; cero filas con lote existente = invariante roto.
func (r *StockLotRepo) Consume(ctx context.Context, lotID string, qty int64) error {
	query := `
		UPDATE stock_lots
		SET on_hand = on_hand - $2, reserved = GREATEST(reserved - $2, 0), updated_at = now()
		WHERE id = $1 AND on_hand >= $2 AND GREATEST(reserved - $2, 0) <= on_hand - $2`
	tag, err := r.q.Exec(ctx, query, lotID, qty)
	if err != nil {
		return fmt.Errorf("consume stock lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, lotID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvariantViolation
	}
	return nil
}

// AddOnHand suma delta (firmado) a la existencia. Con delta negativo la
// condición impide dejar on_hand < reserved o < 0.
func (r *StockLotRepo) AddOnHand(ctx context.Context, lotID string, delta int64) error {
	query := `
		UPDATE stock_lots
		SET on_hand = on_hand + $2, updated_at = now()
		WHERE id = $1 AND on_hand + $2 >= reserved AND on_hand + $2 >= 0`
	tag, err := r.q.Exec(ctx, query, lotID, delta)
	if err != nil {
		return fmt.Errorf("add on hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, lotID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvariantViolation
	}
	return nil
}

// SelectForDemand elige el lote para una demanda: FEFO con fallback. Primero
// el vencimiento no nulo más próximo con disponible suficiente; si ninguno,
// el de mayor disponible entre los que alcanzan. Bloquea la fila elegida.
func (r *StockLotRepo) SelectForDemand(ctx context.Context, productID string, qty int64) (*entity.StockLot, error) {
	query := `
		SELECT ` + stockLotColumns + `
		FROM stock_lots
		WHERE product_id = $1 AND on_hand - reserved >= $2
		ORDER BY (expiry_date IS NULL) ASC, expiry_date ASC, on_hand - reserved DESC
		LIMIT 1
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, productID, qty), "select lot for demand")
}

func (r *StockLotRepo) exists(ctx context.Context, lotID string) (bool, error) {
	var found bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_lots WHERE id = $1)`, lotID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check stock lot exists: %w", err)
	}
	return found, nil
}

func (r *StockLotRepo) scanOne(row pgx.Row, op string) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(&l.ID, &l.ProductID, &l.LotCode, &l.ExpiryDate,
		&l.OnHand, &l.Reserved, &l.UnitCost, &l.ReceivedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}
