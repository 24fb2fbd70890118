package users

import (
	"time"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

// UserDTO is the account payload returned to clients. The password hash
// never leaves the service layer.
type UserDTO struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AddressDTO is one address book entry.
type AddressDTO struct {
	ID         int64   `json:"id"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
	IsDefault  bool    `json:"isDefault"`
}

// FromModel maps a stored user row to the API shape.
func FromModel(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func addressFromModel(address *models.UserAddress) AddressDTO {
	return AddressDTO{
		ID:         address.ID,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		Phone:      address.Phone,
		IsDefault:  address.IsDefault,
	}
}
