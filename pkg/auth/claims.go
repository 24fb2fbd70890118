package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID int64          `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the resolved caller identity handed to services by the auth
// middleware. Handlers receive it by parameter, never via ambient globals.
type Principal struct {
	UserID int64
	Role   enums.UserRole
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == enums.UserRoleAdmin
}
