package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

// Service manages account profiles and the address book.
type Service interface {
	GetProfile(ctx context.Context, userID int64) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*UserDTO, error)
	ListAddresses(ctx context.Context, userID int64) ([]AddressDTO, error)
	CreateAddress(ctx context.Context, userID int64, input AddressInput) (*AddressDTO, error)
	UpdateAddress(ctx context.Context, userID, addressID int64, input AddressInput) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID int64) error
}

// UpdateProfileInput carries optional profile edits.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// AddressInput is the payload for creating or replacing an address.
type AddressInput struct {
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      *string
	IsDefault  bool
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListAddresses(ctx context.Context, userID int64) ([]models.UserAddress, error)
	FindAddress(ctx context.Context, id, userID int64) (*models.UserAddress, error)
	CreateAddress(ctx context.Context, address *models.UserAddress) error
	UpdateAddress(ctx context.Context, address *models.UserAddress) error
	DeleteAddress(ctx context.Context, id, userID int64) (int64, error)
	ClearDefault(ctx context.Context, userID, keep int64) error
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService builds the users service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) ListAddresses(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, addressFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateAddress(ctx context.Context, userID int64, input AddressInput) (*AddressDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	address := &models.UserAddress{
		UserID:     userID,
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    normalizeCountry(input.Country),
		Phone:      input.Phone,
		IsDefault:  input.IsDefault,
	}
	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert address")
	}
	if address.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, address.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}
	dto := addressFromModel(address)
	return &dto, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID int64, input AddressInput) (*AddressDTO, error) {
	if userID <= 0 || addressID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and address id are required")
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	address, err := s.repo.FindAddress(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}

	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = input.Line2
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Country = normalizeCountry(input.Country)
	address.Phone = input.Phone
	address.IsDefault = input.IsDefault

	if err := s.repo.UpdateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	if address.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, address.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}
	dto := addressFromModel(address)
	return &dto, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 || addressID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and address id are required")
	}
	removed, err := s.repo.DeleteAddress(ctx, addressID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func validateAddress(input AddressInput) error {
	if strings.TrimSpace(input.Line1) == "" ||
		strings.TrimSpace(input.City) == "" ||
		strings.TrimSpace(input.State) == "" ||
		strings.TrimSpace(input.PostalCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete")
	}
	return nil
}

func normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return "US"
	}
	return country
}
