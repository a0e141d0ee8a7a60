package addresses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/epartnic/epartnic-backend/pkg/db/models"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's saved delivery addresses.
type Service interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, ownerID uuid.UUID, input AddressInput) (*models.Address, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input AddressInput) (*models.Address, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	SetDefault(ctx context.Context, ownerID, id uuid.UUID) error
}

// AddressInput carries the writable address fields.
type AddressInput struct {
	FullName string
	Phone    string
	Line1    string
	Line2    *string
	City     string
	State    string
	Pincode  string
	Country  string
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an addresses service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("addresses repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]models.Address, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	addresses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return address, nil
}

// Create saves a new address. The owner's first address becomes the default.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input AddressInput) (*models.Address, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
	}

	address := &models.Address{
		OwnerID:   ownerID,
		FullName:  input.FullName,
		Phone:     input.Phone,
		Line1:     input.Line1,
		Line2:     input.Line2,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
		Country:   countryOrDefault(input.Country),
		IsDefault: count == 0,
	}

	created, err := s.repo.Create(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input AddressInput) (*models.Address, error) {
	address, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	address.FullName = input.FullName
	address.Phone = input.Phone
	address.Line1 = input.Line1
	address.Line2 = input.Line2
	address.City = input.City
	address.State = input.State
	address.Pincode = input.Pincode
	address.Country = countryOrDefault(input.Country)

	updated, err := s.repo.Update(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return updated, nil
}

// Delete removes an address. Deleting the default leaves the owner with no
// default; the next checkout simply starts without a preselected address.
func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// SetDefault promotes one address in a single transaction so the owner never
// observes two defaults.
func (s *service) SetDefault(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id and address id are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UnsetDefaults(ctx, ownerID); err != nil {
			return err
		}
		affected, err := repo.MarkDefault(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return nil
}

func countryOrDefault(country string) string {
	if country == "" {
		return "IN"
	}
	return country
}
