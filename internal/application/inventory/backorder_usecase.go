package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/clinistock-api/internal/application/dto"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// BackorderReportUseCase genera el reporte de compras pendientes: la demanda
// en backorder agregada por producto, con cantidad sugerida de pedido. Es el
// insumo de la pantalla de órdenes de compra del dashboard.
type BackorderReportUseCase struct {
	resRepo repository.ReservationRepository
	lotRepo repository.StockLotRepository
}

// NewBackorderReportUseCase construye el caso de uso.
func NewBackorderReportUseCase(resRepo repository.ReservationRepository, lotRepo repository.StockLotRepository) *BackorderReportUseCase {
	return &BackorderReportUseCase{resRepo: resRepo, lotRepo: lotRepo}
}

// Generate devuelve las sugerencias de compra ordenadas por urgencia
// (mayor demanda pendiente primero, luego más solicitudes).
// Solo lecturas; corre fuera de transacción.
func (uc *BackorderReportUseCase) Generate(ctx context.Context) ([]dto.BackorderSuggestionDTO, error) {
	items, err := uc.resRepo.SummarizeBackorders(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.BackorderSuggestionDTO{}, nil
	}

	suggestions := make([]dto.BackorderSuggestionDTO, 0, len(items))
	for _, item := range items {
		// Existencia total del producto (todos los lotes).
		var onHand int64
		lots, err := uc.lotRepo.ListByProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		for _, lot := range lots {
			onHand += lot.OnHand
		}

		// Sugerencia: cubrir la demanda pendiente y, si el producto tiene
		// punto de reorden, reponer también hasta ese nivel.
		suggested := item.PendingQty
		if item.ReorderPoint > onHand {
			suggested += item.ReorderPoint - onHand
		}

		suggestions = append(suggestions, dto.BackorderSuggestionDTO{
			ProductID:    item.ProductID,
			SKU:          item.SKU,
			ProductName:  item.ProductName,
			PendingQty:   item.PendingQty,
			Requests:     item.Requests,
			OnHand:       onHand,
			ReorderPoint: item.ReorderPoint,
			SuggestedQty: suggested,
			OldestCaseID: item.OldestCaseID,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.PendingQty != b.PendingQty {
			return a.PendingQty > b.PendingQty
		}
		return a.Requests > b.Requests
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
