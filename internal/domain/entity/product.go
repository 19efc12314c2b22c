package entity

import (
	"encoding/json"
	"time"
)

// Product representa un insumo o material clínico del catálogo.
// Las existencias se manejan por lote en StockLot; aquí solo datos de catálogo.
type Product struct {
	ID           string
	SKU          string // código único del insumo
	Name         string
	Description  string
	UnitMeasure  string // unidad, caja, ml, etc.
	ReorderPoint int64  // 0 = sin punto de reorden
	Attributes   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
