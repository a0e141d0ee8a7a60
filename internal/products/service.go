package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/epartnic/epartnic-backend/pkg/db/models"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/pagination"
	"github.com/epartnic/epartnic-backend/pkg/types"
)

const featuredDefaultLimit = 8

// ProductInput carries the partner-editable fields of a listing.
type ProductInput struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Brand       string          `json:"brand" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Description *string         `json:"description"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Vehicle     types.Vehicle   `json:"vehicle"`
	IsFeatured  bool            `json:"is_featured"`
	IsActive    bool            `json:"is_active"`
}

// Service exposes the catalog reads plus the partner listing surface.
type Service interface {
	List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params) (*ProductList, error)
	Create(ctx context.Context, partnerID uuid.UUID, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, partnerID, id uuid.UUID, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, partnerID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a products service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*ProductList, error) {
	products, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductList{Products: products, NextCursor: next}, nil
}

// Get returns an active listing. Inactive products are hidden from the
// public surface as if they never existed.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > featuredDefaultLimit {
		limit = featuredDefaultLimit
	}
	products, err := s.repo.Featured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	return products, nil
}

func (s *service) ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params) (*ProductList, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	products, next, err := s.repo.ListByPartner(ctx, partnerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner products")
	}
	return &ProductList{Products: products, NextCursor: next}, nil
}

func (s *service) Create(ctx context.Context, partnerID uuid.UUID, input ProductInput) (*models.Product, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}

	product := &models.Product{
		PartnerID:   &partnerID,
		SKU:         input.SKU,
		Name:        input.Name,
		Brand:       input.Brand,
		Category:    input.Category,
		Description: input.Description,
		Images:      input.Images,
		Price:       input.Price,
		Stock:       input.Stock,
		Vehicle:     input.Vehicle,
		IsFeatured:  input.IsFeatured,
		IsActive:    input.IsActive,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, partnerID, id uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.findOwned(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}

	product.SKU = input.SKU
	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.Description = input.Description
	product.Images = input.Images
	product.Price = input.Price
	product.Stock = input.Stock
	product.Vehicle = input.Vehicle
	product.IsFeatured = input.IsFeatured
	product.IsActive = input.IsActive

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, partnerID, id uuid.UUID) error {
	if partnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	err := s.repo.Delete(ctx, id, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// findOwned loads a product and verifies the partner owns it. A foreign
// listing reads the same as a missing one.
func (s *service) findOwned(ctx context.Context, partnerID, id uuid.UUID) (*models.Product, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.PartnerID == nil || *product.PartnerID != partnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
