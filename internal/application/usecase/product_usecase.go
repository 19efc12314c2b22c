package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/clinistock-api/internal/domain"
	"github.com/jhoicas/clinistock-api/internal/domain/entity"
	"github.com/jhoicas/clinistock-api/internal/domain/repository"
)

// ProductUseCase administra el catálogo de insumos clínicos.
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// Create registra un insumo nuevo. El SKU es único.
func (uc *ProductUseCase) Create(ctx context.Context, product *entity.Product) error {
	if product.SKU == "" || product.Name == "" {
		return domain.ErrInvalidInput
	}
	if product.ReorderPoint < 0 {
		return domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetBySKU(ctx, product.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	now := time.Now()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return uc.productRepo.Create(ctx, product)
}

// GetByID obtiene un insumo.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List lista el catálogo paginado.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, limit, offset)
}
