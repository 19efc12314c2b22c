package repository

import (
	"context"

	"github.com/jhoicas/clinistock-api/internal/domain/entity"
)

// ProductRepository puerto de persistencia para el catálogo de insumos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
