package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/epartnic/epartnic-backend/pkg/db/models"
	"github.com/epartnic/epartnic-backend/pkg/pagination"
)

// Repository persists catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Product, string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params) ([]models.Product, string, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id, partnerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if filters.Make != "" {
		query = query.Where("vehicle ->> 'make' = ?", filters.Make)
	}
	if filters.Model != "" {
		query = query.Where("vehicle ->> 'model' = ?", filters.Model)
	}
	if filters.Year != 0 {
		query = query.Where("CAST(vehicle ->> 'year' AS INTEGER) = ?", filters.Year)
	}
	if filters.Featured != nil {
		query = query.Where("is_featured = ?", *filters.Featured)
	}

	return r.page(query, params)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).Where("partner_id = ?", partnerID)
	return r.page(query, params)
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id, partnerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND partner_id = ?", id, partnerID).
		Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&products).Error
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return products, nextCursor, nil
}
