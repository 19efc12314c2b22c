package dto

import (
	"encoding/json"
	"time"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	ReorderPoint int64           `json:"reorder_point,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// ProductResponse representación HTTP de un insumo del catálogo.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	ReorderPoint int64           `json:"reorder_point,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
