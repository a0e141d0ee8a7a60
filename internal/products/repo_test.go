package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/epartnic/epartnic-backend/pkg/db/models"
	"github.com/epartnic/epartnic-backend/pkg/pagination"
	"github.com/epartnic/epartnic-backend/pkg/types"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  partner_id TEXT,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT,
  images TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  vehicle TEXT,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	t.Cleanup(func() {
		_ = conn.Exec(`DELETE FROM products`).Error
	})
	return conn
}

type productSeed struct {
	partnerID *uuid.UUID
	category  string
	brand     string
	vehicle   types.Vehicle
	featured  bool
	active    bool
	createdAt time.Time
}

func seedProduct(t *testing.T, conn *gorm.DB, seed productSeed) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		PartnerID:  seed.partnerID,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Name:       "Brake Pad Set",
		Brand:      seed.brand,
		Category:   seed.category,
		Price:      decimal.NewFromInt(500),
		Stock:      10,
		Vehicle:    seed.vehicle,
		IsFeatured: seed.featured,
		IsActive:   seed.active,
		CreatedAt:  seed.createdAt,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestListFiltersByVehicleFitment(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	now := time.Now()

	swift := seedProduct(t, conn, productSeed{
		category: "brakes", brand: "Bosch", active: true, createdAt: now,
		vehicle: types.Vehicle{Make: "Maruti", Model: "Swift", Year: 2019},
	})
	seedProduct(t, conn, productSeed{
		category: "brakes", brand: "Bosch", active: true, createdAt: now,
		vehicle: types.Vehicle{Make: "Hyundai", Model: "i20", Year: 2021},
	})

	page, _, err := repo.List(context.Background(), Filters{Make: "Maruti", Model: "Swift"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, swift.ID, page[0].ID)

	page, _, err = repo.List(context.Background(), Filters{Year: 2021}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Hyundai", page[0].Vehicle.Make)
}

func TestListHidesInactiveProducts(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	now := time.Now()

	active := seedProduct(t, conn, productSeed{category: "filters", brand: "Mann", active: true, createdAt: now})
	seedProduct(t, conn, productSeed{category: "filters", brand: "Mann", active: false, createdAt: now})

	page, _, err := repo.List(context.Background(), Filters{Category: "filters"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, active.ID, page[0].ID)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	base := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p := seedProduct(t, conn, productSeed{
			category: "brakes", brand: "Bosch", active: true,
			createdAt: base.Add(time.Duration(i) * time.Minute),
		})
		ids = append(ids, p.ID)
	}

	page, cursor, err := repo.List(context.Background(), Filters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	require.NotEmpty(t, cursor)

	rest, next, err := repo.List(context.Background(), Filters{}, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
	assert.Empty(t, next)
}

func TestFeaturedReturnsOnlyActiveFeatured(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	now := time.Now()

	featured := seedProduct(t, conn, productSeed{category: "brakes", brand: "Bosch", featured: true, active: true, createdAt: now})
	seedProduct(t, conn, productSeed{category: "brakes", brand: "Bosch", featured: true, active: false, createdAt: now})
	seedProduct(t, conn, productSeed{category: "brakes", brand: "Bosch", featured: false, active: true, createdAt: now})

	products, err := repo.Featured(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, featured.ID, products[0].ID)
}

func TestDeleteScopedToPartner(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	partnerID := uuid.New()

	product := seedProduct(t, conn, productSeed{
		partnerID: &partnerID, category: "brakes", brand: "Bosch", active: true, createdAt: time.Now(),
	})

	err := repo.Delete(context.Background(), product.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(context.Background(), product.ID, partnerID))

	_, err = repo.FindByID(context.Background(), product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestServiceGetHidesInactive(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)

	inactive := seedProduct(t, conn, productSeed{category: "brakes", brand: "Bosch", active: false, createdAt: time.Now()})

	_, err = svc.Get(context.Background(), inactive.ID)
	require.Error(t, err)
}

func TestServiceUpdateRejectsForeignListing(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ownerID := uuid.New()
	product := seedProduct(t, conn, productSeed{
		partnerID: &ownerID, category: "brakes", brand: "Bosch", active: true, createdAt: time.Now(),
	})

	input := ProductInput{
		SKU: product.SKU, Name: product.Name, Brand: product.Brand,
		Category: product.Category, Price: product.Price, Stock: 5, IsActive: true,
	}

	_, err = svc.Update(context.Background(), uuid.New(), product.ID, input)
	require.Error(t, err)

	updated, err := svc.Update(context.Background(), ownerID, product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Stock)
}
