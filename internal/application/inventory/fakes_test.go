package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// memStore estado compartido de los repos en memoria. Replica la semántica de
// los repositorios de PostgreSQL (UPDATEs condicionales, FEFO, liberación con
// tope) sin base de datos; el fakeTxRunner da el todo-o-nada con snapshots.
type memStore struct {
	lots         map[string]*entity.StockLot
	movements    []*entity.StockMovement
	reservations map[string]*entity.Reservation
	resOrder     []string // ids en orden de creación
	cases        map[string]*entity.Case
	closures     map[string]*entity.CaseClosure // por caseID
	products     map[string]*entity.Product
}

func newMemStore() *memStore {
	return &memStore{
		lots:         map[string]*entity.StockLot{},
		reservations: map[string]*entity.Reservation{},
		cases:        map[string]*entity.Case{},
		closures:     map[string]*entity.CaseClosure{},
		products:     map[string]*entity.Product{},
	}
}

func copyLot(l *entity.StockLot) *entity.StockLot {
	c := *l
	return &c
}

func copyReservation(r *entity.Reservation) *entity.Reservation {
	c := *r
	c.EvidenceRefs = append([]string(nil), r.EvidenceRefs...)
	return &c
}

func copyCase(cs *entity.Case) *entity.Case {
	c := *cs
	return &c
}

func copyClosure(cl *entity.CaseClosure) *entity.CaseClosure {
	c := *cl
	c.UsedLines = append([]entity.ClosureLine(nil), cl.UsedLines...)
	c.ReleasedLines = append([]entity.ClosureLine(nil), cl.ReleasedLines...)
	return &c
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, l := range s.lots {
		snap.lots[id] = copyLot(l)
	}
	snap.movements = append([]*entity.StockMovement(nil), s.movements...)
	for id, r := range s.reservations {
		snap.reservations[id] = copyReservation(r)
	}
	snap.resOrder = append([]string(nil), s.resOrder...)
	for id, c := range s.cases {
		snap.cases[id] = copyCase(c)
	}
	for id, cl := range s.closures {
		snap.closures[id] = copyClosure(cl)
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.lots = snap.lots
	s.movements = snap.movements
	s.reservations = snap.reservations
	s.resOrder = snap.resOrder
	s.cases = snap.cases
	s.closures = snap.closures
	s.products = snap.products
}

// fakeTxRunner ejecuta el callback sobre el store y revierte con snapshot si
// falla, imitando el rollback de la transacción real.
type fakeTxRunner struct {
	store *memStore
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.StockLotRepository,
	movRepo repository.StockMovementRepository,
	resRepo repository.ReservationRepository,
	caseRepo repository.CaseRepository,
) error) error {
	snap := r.store.snapshot()
	err := fn(
		&fakeLotRepo{s: r.store},
		&fakeMovementRepo{s: r.store},
		&fakeReservationRepo{s: r.store},
		&fakeCaseRepo{s: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// ── StockLotRepository ───────────────────────────────────────────────────────

type fakeLotRepo struct {
	s *memStore
}

var _ repository.StockLotRepository = (*fakeLotRepo)(nil)

func (f *fakeLotRepo) Create(_ context.Context, lot *entity.StockLot) error {
	if _, ok := f.s.lots[lot.ID]; ok {
		return domain.ErrDuplicate
	}
	f.s.lots[lot.ID] = copyLot(lot)
	return nil
}

func (f *fakeLotRepo) GetByID(_ context.Context, id string) (*entity.StockLot, error) {
	lot, ok := f.s.lots[id]
	if !ok {
		return nil, nil
	}
	return copyLot(lot), nil
}

func (f *fakeLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLotRepo) GetByProductAndCode(_ context.Context, productID, lotCode string) (*entity.StockLot, error) {
	for _, lot := range f.s.lots {
		if lot.ProductID == productID && lot.LotCode == lotCode {
			return copyLot(lot), nil
		}
	}
	return nil, nil
}

func (f *fakeLotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLot, error) {
	var list []*entity.StockLot
	for _, lot := range f.s.lots {
		if lot.ProductID == productID {
			list = append(list, copyLot(lot))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *fakeLotRepo) Reserve(_ context.Context, lotID string, qty int64) error {
	lot, ok := f.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if lot.OnHand-lot.Reserved < qty {
		return domain.ErrInsufficientAvailable
	}
	lot.Reserved += qty
	return nil
}

func (f *fakeLotRepo) Release(_ context.Context, lotID string, qty int64) (int64, error) {
	lot, ok := f.s.lots[lotID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	released := qty
	if lot.Reserved < released {
		released = lot.Reserved
	}
	lot.Reserved -= released
	return released, nil
}

func (f *fakeLotRepo) Consume(_ context.Context, lotID string, qty int64) error {
	lot, ok := f.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	newReserved := lot.Reserved - qty
	if newReserved < 0 {
		newReserved = 0
	}
	if lot.OnHand < qty || newReserved > lot.OnHand-qty {
		return domain.ErrInvariantViolation
	}
	lot.OnHand -= qty
	lot.Reserved = newReserved
	return nil
}

func (f *fakeLotRepo) AddOnHand(_ context.Context, lotID string, delta int64) error {
	lot, ok := f.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if lot.OnHand+delta < lot.Reserved || lot.OnHand+delta < 0 {
		return domain.ErrInvariantViolation
	}
	lot.OnHand += delta
	return nil
}

func (f *fakeLotRepo) SelectForDemand(_ context.Context, productID string, qty int64) (*entity.StockLot, error) {
	var candidates []*entity.StockLot
	for _, lot := range f.s.lots {
		if lot.ProductID == productID && lot.OnHand-lot.Reserved >= qty {
			candidates = append(candidates, lot)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.ExpiryDate != nil && b.ExpiryDate == nil:
			return true
		case a.ExpiryDate == nil && b.ExpiryDate != nil:
			return false
		case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			return a.OnHand-a.Reserved > b.OnHand-b.Reserved
		}
	})
	return copyLot(candidates[0]), nil
}

// ── StockMovementRepository ──────────────────────────────────────────────────

type fakeMovementRepo struct {
	s *memStore
}

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (f *fakeMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	m := *movement
	f.s.movements = append(f.s.movements, &m)
	return nil
}

func (f *fakeMovementRepo) ListByLot(_ context.Context, lotID string, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for _, m := range f.s.movements {
		if m.LotID == lotID {
			list = append(list, m)
		}
	}
	return page(list, limit, offset), nil
}

func (f *fakeMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for _, m := range f.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		list = append(list, m)
	}
	return page(list, limit, offset), nil
}

func (f *fakeMovementRepo) SumOnHandDeltas(_ context.Context, lotID string) (int64, error) {
	var sum int64
	for _, m := range f.s.movements {
		if m.LotID == lotID && m.Kind != entity.MovementKindReserveRelease {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func page(list []*entity.StockMovement, limit, offset int) []*entity.StockMovement {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── ReservationRepository ────────────────────────────────────────────────────

type fakeReservationRepo struct {
	s *memStore
}

var _ repository.ReservationRepository = (*fakeReservationRepo)(nil)

func (f *fakeReservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	f.s.reservations[res.ID] = copyReservation(res)
	f.s.resOrder = append(f.s.resOrder, res.ID)
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	res, ok := f.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return copyReservation(res), nil
}

func (f *fakeReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeReservationRepo) ListByCase(_ context.Context, caseID string) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for _, id := range f.s.resOrder {
		if res := f.s.reservations[id]; res.CaseID == caseID {
			list = append(list, copyReservation(res))
		}
	}
	return list, nil
}

func (f *fakeReservationRepo) ListBackordered(_ context.Context, productID string) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for _, id := range f.s.resOrder {
		res := f.s.reservations[id]
		if res.ProductID != productID || !res.OutOfStock {
			continue
		}
		if res.Status == entity.ReservationPending || res.Status == entity.ReservationConfirmed {
			list = append(list, copyReservation(res))
		}
	}
	return list, nil
}

func (f *fakeReservationRepo) SummarizeBackorders(_ context.Context) ([]repository.BackorderItem, error) {
	byProduct := map[string]*repository.BackorderItem{}
	var order []string
	for _, id := range f.s.resOrder {
		res := f.s.reservations[id]
		if !res.OutOfStock {
			continue
		}
		if res.Status != entity.ReservationPending && res.Status != entity.ReservationConfirmed {
			continue
		}
		item, ok := byProduct[res.ProductID]
		if !ok {
			product := f.s.products[res.ProductID]
			item = &repository.BackorderItem{
				ProductID:    res.ProductID,
				OldestCaseID: res.CaseID,
			}
			if product != nil {
				item.SKU = product.SKU
				item.ProductName = product.Name
				item.ReorderPoint = product.ReorderPoint
			}
			byProduct[res.ProductID] = item
			order = append(order, res.ProductID)
		}
		item.PendingQty += res.RequestedQty
		item.Requests++
	}
	var items []repository.BackorderItem
	for _, productID := range order {
		items = append(items, *byProduct[productID])
	}
	return items, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id, from, to, actor string) error {
	res, ok := f.s.reservations[id]
	if !ok || res.Status != from {
		return domain.ErrConcurrentModification
	}
	res.Status = to
	res.UpdatedBy = actor
	res.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReservationRepo) AttachLot(_ context.Context, id, lotID, actor string) error {
	res, ok := f.s.reservations[id]
	if !ok || !res.OutOfStock {
		return domain.ErrConcurrentModification
	}
	if res.Status != entity.ReservationPending && res.Status != entity.ReservationConfirmed {
		return domain.ErrConcurrentModification
	}
	res.LotID = &lotID
	res.OutOfStock = false
	res.Status = entity.ReservationConfirmed
	res.UpdatedBy = actor
	res.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReservationRepo) SetUsed(_ context.Context, id string, usedQty int64, evidenceRefs []string, from, actor string) error {
	res, ok := f.s.reservations[id]
	if !ok || res.Status != from {
		return domain.ErrConcurrentModification
	}
	res.Status = entity.ReservationUsed
	res.UsedQty = &usedQty
	res.EvidenceRefs = append([]string(nil), evidenceRefs...)
	res.UpdatedBy = actor
	res.UpdatedAt = time.Now()
	return nil
}

// ── CaseRepository ───────────────────────────────────────────────────────────

type fakeCaseRepo struct {
	s *memStore
}

var _ repository.CaseRepository = (*fakeCaseRepo)(nil)

func (f *fakeCaseRepo) Create(_ context.Context, c *entity.Case) error {
	f.s.cases[c.ID] = copyCase(c)
	return nil
}

func (f *fakeCaseRepo) GetByID(_ context.Context, id string) (*entity.Case, error) {
	c, ok := f.s.cases[id]
	if !ok {
		return nil, nil
	}
	return copyCase(c), nil
}

func (f *fakeCaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Case, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeCaseRepo) UpdateReadiness(_ context.Context, id, readiness string) error {
	c, ok := f.s.cases[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Readiness = readiness
	c.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCaseRepo) Close(_ context.Context, id, closedBy string, closedAt time.Time) error {
	c, ok := f.s.cases[id]
	if !ok {
		return domain.ErrAlreadyClosed
	}
	if entity.IsTerminalReadiness(c.Readiness) {
		return domain.ErrAlreadyClosed
	}
	c.Readiness = entity.CaseCompleted
	c.ClosedAt = &closedAt
	c.ClosedBy = closedBy
	c.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCaseRepo) CreateClosure(_ context.Context, closure *entity.CaseClosure) error {
	if _, ok := f.s.closures[closure.CaseID]; ok {
		return domain.ErrDuplicate
	}
	f.s.closures[closure.CaseID] = copyClosure(closure)
	return nil
}

func (f *fakeCaseRepo) GetClosureByCase(_ context.Context, caseID string) (*entity.CaseClosure, error) {
	closure, ok := f.s.closures[caseID]
	if !ok {
		return nil, nil
	}
	return copyClosure(closure), nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type fakeProductRepo struct {
	s *memStore
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	f.s.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.s.products[id], nil
}

func (f *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range f.s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range f.s.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
