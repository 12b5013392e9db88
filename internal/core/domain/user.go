package domain

import (
	"fmt"
	"time"
)

// Role is the coarse permission level stored on a user record.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleHomeAdmin  Role = "home_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSuperadmin || r == RoleHomeAdmin
}

// User models an administrator account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:255;not null"`
	Role         Role      `json:"role" gorm:"size:32;not null;default:home_admin"`
	HomeID       *string   `json:"homeId,omitempty" gorm:"column:home_id;size:64;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (User) TableName() string { return "users" }

// Principal is the authorization identity derived from a verified token.
// The only implementations are Superadmin and HomeAdmin.
type Principal interface {
	principal()
}

// Superadmin may act on every home.
type Superadmin struct{}

// HomeAdmin may act only on resources owned by HomeID.
type HomeAdmin struct {
	HomeID string
}

func (Superadmin) principal() {}
func (HomeAdmin) principal()  {}

// NewPrincipal builds a Principal from a role and optional home scope.
func NewPrincipal(role Role, homeID string) (Principal, error) {
	switch role {
	case RoleSuperadmin:
		return Superadmin{}, nil
	case RoleHomeAdmin:
		if homeID == "" {
			return nil, fmt.Errorf("%w: home_admin without home scope", ErrTokenInvalid)
		}
		return HomeAdmin{HomeID: homeID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, role)
	}
}

// CanAccess reports whether p may mutate a resource owned by resourceHomeID.
// An empty resourceHomeID denotes a global resource, reserved for superadmins.
func CanAccess(p Principal, resourceHomeID string) bool {
	switch v := p.(type) {
	case Superadmin:
		return true
	case HomeAdmin:
		return resourceHomeID != "" && v.HomeID == resourceHomeID
	default:
		return false
	}
}

// IsSuperadmin is shorthand for a type check on p.
func IsSuperadmin(p Principal) bool {
	_, ok := p.(Superadmin)
	return ok
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	HomeID    string    `json:"home_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal converts the claims into an authorization identity.
func (c *Claims) Principal() (Principal, error) {
	return NewPrincipal(c.Role, c.HomeID)
}
