package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionPaymentWrite    = "payment:write"
	PermissionTransactionRead = "transaction:read"
	PermissionReadAdmin       = "admin:read"
	PermissionWriteAdmin      = "admin:write"
	PermissionCommissionRead  = "commission:read"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case "admin":
		return []string{
			PermissionPaymentWrite,
			PermissionTransactionRead,
			PermissionCommissionRead,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case "vendor":
		return []string{
			PermissionPaymentWrite,
			PermissionTransactionRead,
			PermissionCommissionRead,
		}
	case "buyer", "user":
		return []string{
			PermissionPaymentWrite,
			PermissionTransactionRead,
		}
	default:
		return []string{}
	}
}
