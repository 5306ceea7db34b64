// Package usecase contiene los casos de uso del catálogo de productos.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ProductUseCase CRUD y búsqueda del catálogo.
type ProductUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductUseCase(products repository.ProductRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{products: products, categories: categories}
}

// Create alta de producto. SKU y código de barras deben ser únicos.
func (uc *ProductUseCase) Create(req dto.CreateProductRequest) (*entity.Product, error) {
	if req.SKU == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if req.SellingPrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.products.GetBySKU(req.SKU); err == nil {
		return nil, fmt.Errorf("SKU %s ya existe: %w", req.SKU, domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if req.Barcode != "" {
		if _, err := uc.products.GetByBarcode(req.Barcode); err == nil {
			return nil, fmt.Errorf("código de barras %s ya existe: %w", req.Barcode, domain.ErrDuplicate)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if req.CategoryID != 0 {
		if _, err := uc.categories.GetByID(req.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &entity.Product{
		SKU:                         req.SKU,
		Barcode:                     req.Barcode,
		NDCNumber:                   req.NDCNumber,
		Name:                        req.Name,
		GenericName:                 req.GenericName,
		BrandName:                   req.BrandName,
		Description:                 req.Description,
		DosageForm:                  req.DosageForm,
		Strength:                    req.Strength,
		Manufacturer:                req.Manufacturer,
		CostPrice:                   req.CostPrice,
		SellingPrice:                req.SellingPrice,
		MinStockLevel:               req.MinStockLevel,
		MaxStockLevel:               req.MaxStockLevel,
		ReorderPoint:                req.ReorderPoint,
		RequiresPrescription:        req.RequiresPrescription,
		IsControlledSubstance:       req.IsControlledSubstance,
		ControlledSubstanceSchedule: req.ControlledSubstanceSchedule,
		CategoryID:                  req.CategoryID,
		IsActive:                    true,
	}
	if req.MarkupPercentage != nil {
		product.MarkupPercentage = *req.MarkupPercentage
	}
	if err := uc.products.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID devuelve un producto por id.
func (uc *ProductUseCase) GetByID(id int64) (*entity.Product, error) {
	return uc.products.GetByID(id)
}

// GetBySKU devuelve un producto por SKU.
func (uc *ProductUseCase) GetBySKU(sku string) (*entity.Product, error) {
	return uc.products.GetBySKU(sku)
}

// GetByBarcode búsqueda por escaneo en caja.
func (uc *ProductUseCase) GetByBarcode(barcode string) (*entity.Product, error) {
	return uc.products.GetByBarcode(barcode)
}

// Update modifica solo los campos presentes en la petición.
func (uc *ProductUseCase) Update(id int64, req dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.GenericName != nil {
		product.GenericName = *req.GenericName
	}
	if req.BrandName != nil {
		product.BrandName = *req.BrandName
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.DosageForm != nil {
		product.DosageForm = *req.DosageForm
	}
	if req.Strength != nil {
		product.Strength = *req.Strength
	}
	if req.Manufacturer != nil {
		product.Manufacturer = *req.Manufacturer
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.SellingPrice = *req.SellingPrice
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		product.MaxStockLevel = *req.MaxStockLevel
	}
	if req.ReorderPoint != nil {
		product.ReorderPoint = *req.ReorderPoint
	}
	if req.RequiresPrescription != nil {
		product.RequiresPrescription = *req.RequiresPrescription
	}
	if req.IsControlledSubstance != nil {
		product.IsControlledSubstance = *req.IsControlledSubstance
	}
	if req.CategoryID != nil {
		if *req.CategoryID != 0 {
			if _, err := uc.categories.GetByID(*req.CategoryID); err != nil {
				return nil, err
			}
		}
		product.CategoryID = *req.CategoryID
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := uc.products.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate baja lógica del producto.
func (uc *ProductUseCase) Deactivate(id int64) error {
	if _, err := uc.products.GetByID(id); err != nil {
		return err
	}
	return uc.products.Deactivate(id)
}

// Search lista/busca productos por texto y categoría.
func (uc *ProductUseCase) Search(ctx context.Context, filter repository.ProductSearch) ([]*entity.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.products.List(ctx, filter)
}

// CreateCategory alta de categoría.
func (uc *ProductUseCase) CreateCategory(req dto.CategoryRequest) (*entity.Category, error) {
	if req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	category := &entity.Category{Name: req.Name, Description: req.Description, IsActive: true}
	if err := uc.categories.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories categorías activas.
func (uc *ProductUseCase) ListCategories() ([]*entity.Category, error) {
	return uc.categories.List(true)
}
