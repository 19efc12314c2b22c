package http

import (
	"github.com/jhoicas/clinistock-api/internal/application/dto"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		UnitMeasure:  p.UnitMeasure,
		ReorderPoint: p.ReorderPoint,
		Attributes:   p.Attributes,
		CreatedAt:    p.CreatedAt,
	}
}

func toReservationResponse(res *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:               res.ID,
		CaseID:           res.CaseID,
		ProductID:        res.ProductID,
		LotID:            res.LotID,
		RequestedQty:     res.RequestedQty,
		UsedQty:          res.UsedQty,
		Status:           res.Status,
		OutOfStock:       res.OutOfStock,
		RequestedLotText: res.RequestedLotText,
		EvidenceRefs:     res.EvidenceRefs,
		Notes:            res.Notes,
		CreatedAt:        res.CreatedAt,
		UpdatedAt:        res.UpdatedAt,
	}
}

func toReservationResponses(list []*entity.Reservation) []dto.ReservationResponse {
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toReservationResponse(res))
	}
	return out
}

func toStockLotResponse(lot *entity.StockLot) dto.StockLotResponse {
	return dto.StockLotResponse{
		ID:         lot.ID,
		ProductID:  lot.ProductID,
		LotCode:    lot.LotCode,
		ExpiryDate: lot.ExpiryDate,
		OnHand:     lot.OnHand,
		Reserved:   lot.Reserved,
		Available:  lot.Available(),
		UnitCost:   lot.UnitCost,
		ReceivedAt: lot.ReceivedAt,
	}
}

func toStockMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:        m.ID,
		LotID:     m.LotID,
		ProductID: m.ProductID,
		Kind:      m.Kind,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		RefKind:   m.RefKind,
		RefID:     m.RefID,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

func toStockMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toStockMovementResponse(m))
	}
	return out
}

func toCaseResponse(c *entity.Case) dto.CaseResponse {
	return dto.CaseResponse{
		ID:          c.ID,
		PatientRef:  c.PatientRef,
		Description: c.Description,
		ScheduledAt: c.ScheduledAt,
		Readiness:   c.Readiness,
		ClosedAt:    c.ClosedAt,
		ClosedBy:    c.ClosedBy,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
	}
}

func toClosureLineDTOs(lines []entity.ClosureLine) []dto.ClosureLineDTO {
	out := make([]dto.ClosureLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.ClosureLineDTO{
			ReservationID: l.ReservationID,
			ProductID:     l.ProductID,
			LotID:         l.LotID,
			Quantity:      l.Quantity,
		})
	}
	return out
}

func toCaseClosureResponse(closure *entity.CaseClosure) dto.CaseClosureResponse {
	return dto.CaseClosureResponse{
		ID:            closure.ID,
		CaseID:        closure.CaseID,
		UsedLines:     toClosureLineDTOs(closure.UsedLines),
		ReleasedLines: toClosureLineDTOs(closure.ReleasedLines),
		Actor:         closure.Actor,
		Notes:         closure.Notes,
		CreatedAt:     closure.CreatedAt,
	}
}
