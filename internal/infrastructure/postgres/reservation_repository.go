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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL
// (usable con pool o tx). Los cambios de estado condicionan el UPDATE al
// estado previo: cero filas afectadas delata la carrera perdida.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, case_id, product_id, lot_id, requested_qty, used_qty, status, out_of_stock, requested_lot_text, evidence_refs, notes, created_at, updated_at, created_by, updated_by`

// Create persiste una reserva nueva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, case_id, product_id, lot_id, requested_qty, used_qty, status, out_of_stock, requested_lot_text, evidence_refs, notes, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.CaseID, res.ProductID, res.LotID, res.RequestedQty, res.UsedQty,
		res.Status, res.OutOfStock, res.RequestedLotText, res.EvidenceRefs,
		res.Notes, res.CreatedAt, res.UpdatedAt, res.CreatedBy, res.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva por ID.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get reservation")
}

// GetForUpdate obtiene la reserva y bloquea la fila (SELECT FOR UPDATE).
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get reservation for update")
}

// ListByCase lista las reservas de un caso en orden de creación.
func (r *ReservationRepo) ListByCase(ctx context.Context, caseID string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations WHERE case_id = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by case: %w", err)
	}
	return scanReservations(rows)
}

// ListBackordered lista las reservas en backorder del producto, más antigua
// primero (primera en pedir, primera en recibir).
func (r *ReservationRepo) ListBackordered(ctx context.Context, productID string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE product_id = $1 AND out_of_stock = true AND status IN ($2, $3)
		ORDER BY created_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, entity.ReservationPending, entity.ReservationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list backordered reservations: %w", err)
	}
	return scanReservations(rows)
}

// SummarizeBackorders agrega la demanda en backorder por producto.
func (r *ReservationRepo) SummarizeBackorders(ctx context.Context) ([]repository.BackorderItem, error) {
	query := `
		SELECT
			p.id,
			p.sku,
			p.name,
			COALESCE(SUM(res.requested_qty), 0) AS pending_qty,
			COUNT(res.id)                       AS requests,
			p.reorder_point,
			(ARRAY_AGG(res.case_id ORDER BY res.created_at ASC))[1] AS oldest_case_id
		FROM reservations res
		JOIN products p ON p.id = res.product_id
		WHERE res.out_of_stock = true AND res.status IN ($1, $2)
		GROUP BY p.id, p.sku, p.name, p.reorder_point
		ORDER BY pending_qty DESC`
	rows, err := r.q.Query(ctx, query, entity.ReservationPending, entity.ReservationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("summarize backorders: %w", err)
	}
	defer rows.Close()
	var items []repository.BackorderItem
	for rows.Next() {
		var item repository.BackorderItem
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.ProductName,
			&item.PendingQty, &item.Requests, &item.ReorderPoint, &item.OldestCaseID); err != nil {
			return nil, fmt.Errorf("scan backorder item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatus cambia el estado condicionado al estado previo, dejando el
// actor en updated_by.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, from, to, actor string) error {
	query := `
		UPDATE reservations
		SET status = $3, updated_by = $4, updated_at = now()
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, from, to, actor)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// AttachLot ata el lote recibido a una reserva en backorder: limpia
// out_of_stock y la deja en confirmed, condicionado a que siga esperando.
func (r *ReservationRepo) AttachLot(ctx context.Context, id, lotID, actor string) error {
	query := `
		UPDATE reservations
		SET lot_id = $2, out_of_stock = false, status = $3, updated_by = $6, updated_at = now()
		WHERE id = $1 AND out_of_stock = true AND status IN ($4, $5)`
	tag, err := r.q.Exec(ctx, query, id, lotID,
		entity.ReservationConfirmed, entity.ReservationPending, entity.ReservationConfirmed, actor)
	if err != nil {
		return fmt.Errorf("attach lot to reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// SetUsed marca la reserva como usada con cantidad y evidencias,
// condicionado al estado previo.
func (r *ReservationRepo) SetUsed(ctx context.Context, id string, usedQty int64, evidenceRefs []string, from, actor string) error {
	query := `
		UPDATE reservations
		SET status = $3, used_qty = $4, evidence_refs = $5, updated_by = $6, updated_at = now()
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, from, entity.ReservationUsed, usedQty, evidenceRefs, actor)
	if err != nil {
		return fmt.Errorf("set reservation used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *ReservationRepo) scanOne(row pgx.Row, op string) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(&res.ID, &res.CaseID, &res.ProductID, &res.LotID,
		&res.RequestedQty, &res.UsedQty, &res.Status, &res.OutOfStock,
		&res.RequestedLotText, &res.EvidenceRefs, &res.Notes,
		&res.CreatedAt, &res.UpdatedAt, &res.CreatedBy, &res.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.CaseID, &res.ProductID, &res.LotID,
			&res.RequestedQty, &res.UsedQty, &res.Status, &res.OutOfStock,
			&res.RequestedLotText, &res.EvidenceRefs, &res.Notes,
			&res.CreatedAt, &res.UpdatedAt, &res.CreatedBy, &res.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
