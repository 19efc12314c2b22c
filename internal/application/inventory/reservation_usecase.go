package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// ReservationUseCase administra el ciclo de vida de las reservas de material:
// creación (con selección FEFO de lote), transiciones de estado y cancelación.
// Toda mutación corre dentro de una transacción con la fila del caso bloqueada,
// y recomputa el estado de preparación del caso antes de confirmar.
type ReservationUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	resRepo     repository.ReservationRepository // atado al pool, solo lecturas
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	resRepo repository.ReservationRepository,
) *ReservationUseCase {
	return &ReservationUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		resRepo:     resRepo,
	}
}

// CreateReservationInput entrada para crear una reserva.
// Con LotID se reserva ese lote; sin LotID y AutoSelect=true se elige lote
// por FEFO; si nada alcanza (o AutoSelect=false) la reserva nace en backorder
// (out_of_stock=true) sin tocar el libro.
type CreateReservationInput struct {
	CaseID           string
	ProductID        string
	RequestedQty     int64
	LotID            *string
	AutoSelect       bool
	RequestedLotText string
	Notes            string
	Actor            string
}

// Create crea una reserva para un caso. El hold sobre el lote se toma aquí
// (el libro es la única fuente de verdad; ninguna actualización pasiva).
func (uc *ReservationUseCase) Create(ctx context.Context, in CreateReservationInput) (*entity.Reservation, error) {
	if err := uc.validateCreate(ctx, in); err != nil {
		return nil, err
	}

	var created *entity.Reservation
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		if err := lockOpenCase(ctx, caseRepo, in.CaseID); err != nil {
			return err
		}
		ledger := NewLedger(lotRepo, movRepo)
		res, err := createReservationInTx(ctx, ledger, lotRepo, resRepo, in)
		if err != nil {
			return err
		}
		created = res
		_, err = syncCaseReadiness(ctx, resRepo, caseRepo, in.CaseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateBatch crea varias reservas para el mismo caso en una sola transacción
// (el carrito/plantilla del cliente se traduce en un lote de comandos; aquí
// no existe estado de carrito). Si una línea falla, ninguna queda.
func (uc *ReservationUseCase) CreateBatch(ctx context.Context, caseID, actor string, items []CreateReservationInput) ([]*entity.Reservation, error) {
	if caseID == "" || len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for i := range items {
		items[i].CaseID = caseID
		items[i].Actor = actor
		if err := uc.validateCreate(ctx, items[i]); err != nil {
			return nil, err
		}
	}

	var created []*entity.Reservation
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		if err := lockOpenCase(ctx, caseRepo, caseID); err != nil {
			return err
		}
		ledger := NewLedger(lotRepo, movRepo)
		for _, in := range items {
			res, err := createReservationInTx(ctx, ledger, lotRepo, resRepo, in)
			if err != nil {
				return err
			}
			created = append(created, res)
		}
		_, err := syncCaseReadiness(ctx, resRepo, caseRepo, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkConfirmed confirma la disponibilidad de la reserva (pending → confirmed).
func (uc *ReservationUseCase) MarkConfirmed(ctx context.Context, reservationID, actor string) error {
	return uc.transition(ctx, reservationID, entity.ReservationConfirmed, actor)
}

// MarkPrepared marca el material como alistado (confirmed → prepared).
// No hay efecto en el libro: el hold existe desde la creación.
func (uc *ReservationUseCase) MarkPrepared(ctx context.Context, reservationID, actor string) error {
	return uc.transition(ctx, reservationID, entity.ReservationPrepared, actor)
}

// MarkUsed registra el consumo de la reserva. Este es el único punto de
// descuento físico: el cierre de caso no vuelve a descontar. Las evidencias
// son material de auditoría de un colaborador externo, no una precondición.
func (uc *ReservationUseCase) MarkUsed(ctx context.Context, reservationID string, usedQty *int64, evidenceRefs []string, actor string) error {
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		res, err := resRepo.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !entity.CanTransition(res.Status, entity.ReservationUsed) {
			return domain.ErrInvalidTransition
		}
		// Consumir exige lote atado; una reserva en backorder no puede usarse.
		if res.LotID == nil || res.OutOfStock {
			return domain.ErrInvalidInput
		}

		qty := res.RequestedQty
		if usedQty != nil {
			qty = *usedQty
		}
		// El consumo está acotado por el hold propio: exceder lo solicitado
		// descontaría cantidad apartada para otras reservas del mismo lote.
		if qty <= 0 || qty > res.RequestedQty {
			return domain.ErrInvalidInput
		}

		ledger := NewLedger(lotRepo, movRepo)
		if err := ledger.Consume(ctx, *res.LotID, qty, entity.MovementRefReservation, res.ID, actor); err != nil {
			return err
		}
		// Si se usó menos de lo solicitado, el resto del hold se libera aquí.
		if qty < res.RequestedQty {
			if _, err := ledger.Release(ctx, *res.LotID, res.RequestedQty-qty, entity.MovementRefReservation, res.ID, actor); err != nil {
				return err
			}
		}
		if err := resRepo.SetUsed(ctx, res.ID, qty, evidenceRefs, res.Status, actor); err != nil {
			return err
		}
		_, err = syncCaseReadiness(ctx, resRepo, caseRepo, res.CaseID)
		return err
	})
}

// Cancel cancela la reserva liberando explícitamente el hold que tuviera.
// Ningún mecanismo pasivo revierte holds: la compensación es de este método.
func (uc *ReservationUseCase) Cancel(ctx context.Context, reservationID, actor string) error {
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		res, err := resRepo.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !entity.CanTransition(res.Status, entity.ReservationCancelled) {
			return domain.ErrInvalidTransition
		}
		if res.LotID != nil && !res.OutOfStock {
			ledger := NewLedger(lotRepo, movRepo)
			if _, err := ledger.Release(ctx, *res.LotID, res.RequestedQty, entity.MovementRefReservation, res.ID, actor); err != nil {
				return err
			}
		}
		if err := resRepo.UpdateStatus(ctx, res.ID, res.Status, entity.ReservationCancelled, actor); err != nil {
			return err
		}
		_, err = syncCaseReadiness(ctx, resRepo, caseRepo, res.CaseID)
		return err
	})
}

// DirectUsageInput entrada para el flujo ad-hoc de material agregado en medio
// del procedimiento.
type DirectUsageInput struct {
	CaseID       string
	ProductID    string
	Quantity     int64
	LotID        *string
	EvidenceRefs []string
	Notes        string
	Actor        string
}

// CreateDirectUsage registra material agregado durante el procedimiento: la
// reserva nace directamente en used (arista inicial explícita de la máquina
// de estados, no un salto pending → used) y el consumo ocurre en el acto.
// Requiere existencia física inmediata; sin disponible falla.
func (uc *ReservationUseCase) CreateDirectUsage(ctx context.Context, in DirectUsageInput) (*entity.Reservation, error) {
	if in.CaseID == "" || in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var created *entity.Reservation
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		if err := lockOpenCase(ctx, caseRepo, in.CaseID); err != nil {
			return err
		}

		var lot *entity.StockLot
		var err error
		if in.LotID != nil {
			lot, err = lotRepo.GetByID(ctx, *in.LotID)
			if err != nil {
				return err
			}
			if lot == nil || lot.ProductID != in.ProductID {
				return domain.ErrNotFound
			}
		} else {
			lot, err = lotRepo.SelectForDemand(ctx, in.ProductID, in.Quantity)
			if err != nil {
				return err
			}
			if lot == nil {
				return domain.ErrInsufficientAvailable
			}
		}

		now := time.Now()
		qty := in.Quantity
		res := &entity.Reservation{
			ID:           uuid.New().String(),
			CaseID:       in.CaseID,
			ProductID:    in.ProductID,
			LotID:        &lot.ID,
			RequestedQty: qty,
			UsedQty:      &qty,
			Status:       entity.ReservationUsed,
			EvidenceRefs: in.EvidenceRefs,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedBy:    in.Actor,
			UpdatedBy:    in.Actor,
		}

		ledger := NewLedger(lotRepo, movRepo)
		if err := ledger.Reserve(ctx, lot.ID, qty); err != nil {
			return err
		}
		if err := ledger.Consume(ctx, lot.ID, qty, entity.MovementRefReservation, res.ID, in.Actor); err != nil {
			return err
		}
		if err := resRepo.Create(ctx, res); err != nil {
			return err
		}
		created = res
		_, err = syncCaseReadiness(ctx, resRepo, caseRepo, in.CaseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID devuelve una reserva (lectura, fuera de transacción).
func (uc *ReservationUseCase) GetByID(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	res, err := uc.resRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

// ListByCase devuelve las reservas de un caso (lectura).
func (uc *ReservationUseCase) ListByCase(ctx context.Context, caseID string) ([]*entity.Reservation, error) {
	return uc.resRepo.ListByCase(ctx, caseID)
}

// transition aplica un cambio de estado sin efectos de libro (confirmed,
// prepared). El UPDATE condicional del repositorio detecta carreras y deja
// al actor registrado en updated_by.
func (uc *ReservationUseCase) transition(ctx context.Context, reservationID, to, actor string) error {
	return uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		movRepo repository.StockMovementRepository,
		resRepo repository.ReservationRepository,
		caseRepo repository.CaseRepository,
	) error {
		res, err := resRepo.GetForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !entity.CanTransition(res.Status, to) {
			return domain.ErrInvalidTransition
		}
		// Una reserva en backorder no puede confirmarse sin lote; la confirma
		// el reconciliador de compras al atar el lote recibido.
		if to == entity.ReservationConfirmed && res.OutOfStock {
			return domain.ErrInvalidInput
		}
		if err := resRepo.UpdateStatus(ctx, res.ID, res.Status, to, actor); err != nil {
			return err
		}
		_, err = syncCaseReadiness(ctx, resRepo, caseRepo, res.CaseID)
		return err
	})
}

func (uc *ReservationUseCase) validateCreate(ctx context.Context, in CreateReservationInput) error {
	if in.CaseID == "" || in.ProductID == "" || in.RequestedQty <= 0 {
		return domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return nil
}

// lockOpenCase bloquea la fila del caso (serializa contra el cierre) y
// verifica que siga abierto.
func lockOpenCase(ctx context.Context, caseRepo repository.CaseRepository, caseID string) error {
	c, err := caseRepo.GetForUpdate(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if entity.IsTerminalReadiness(c.Readiness) {
		return domain.ErrAlreadyClosed
	}
	return nil
}

// createReservationInTx crea una reserva dentro de la tx actual. El caso ya
// debe estar bloqueado por el caller.
func createReservationInTx(
	ctx context.Context,
	ledger *Ledger,
	lotRepo repository.StockLotRepository,
	resRepo repository.ReservationRepository,
	in CreateReservationInput,
) (*entity.Reservation, error) {
	now := time.Now()
	res := &entity.Reservation{
		ID:               uuid.New().String(),
		CaseID:           in.CaseID,
		ProductID:        in.ProductID,
		RequestedQty:     in.RequestedQty,
		Status:           entity.ReservationPending,
		RequestedLotText: in.RequestedLotText,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
		CreatedBy:        in.Actor,
	}

	switch {
	case in.LotID != nil:
		lot, err := lotRepo.GetByID(ctx, *in.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil || lot.ProductID != in.ProductID {
			return nil, domain.ErrNotFound
		}
		if err := ledger.Reserve(ctx, lot.ID, in.RequestedQty); err != nil {
			return nil, err
		}
		res.LotID = &lot.ID
	case in.AutoSelect:
		lot, err := lotRepo.SelectForDemand(ctx, in.ProductID, in.RequestedQty)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			// Ningún lote alcanza: la reserva queda en backorder sin efecto
			// en el libro, a la espera del reconciliador de compras.
			res.OutOfStock = true
		} else {
			if err := ledger.Reserve(ctx, lot.ID, in.RequestedQty); err != nil {
				return nil, err
			}
			res.LotID = &lot.ID
		}
	default:
		res.OutOfStock = true
	}

	if err := resRepo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}
