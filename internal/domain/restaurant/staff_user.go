package restaurant

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matthewhartstonge/argon2"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role is a staff role inside a restaurant
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAttendant Role = "attendant"
)

// IsValid checks the role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleAttendant:
		return true
	}
	return false
}

// IsInvitable reports whether the role can be granted by invitation
func (r Role) IsInvitable() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleAttendant
}

// CanManage reports whether the role may administer menu, staff and settings
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// Permission names used by the staff UI
const (
	PermissionOrders    = "orders"
	PermissionMenu      = "menu"
	PermissionCustomers = "customers"
	PermissionReports   = "reports"
	PermissionSettings  = "settings"
)

// MinPasswordLength is the minimum staff password length
const MinPasswordLength = 8

// StaffUser is a person who operates a restaurant
type StaffUser struct {
	shared.RestaurantAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Permissions  []string
	IsActive     bool
	InvitedBy    *uuid.UUID
	LastLoginAt  *time.Time
}

// NewStaffUser creates an active staff user. An empty password leaves the
// account without credentials until SetPassword is called.
func NewStaffUser(restaurantID uuid.UUID, name, email string, role Role, permissions []string) (*StaffUser, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if !valueobject.IsValidEmail(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid role: "+string(role))
	}

	perms := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}

	return &StaffUser{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    name,
		Email:                   valueobject.NormalizeEmail(email),
		Role:                    role,
		Permissions:             perms,
		IsActive:                true,
	}, nil
}

// SetPassword hashes and stores a new password with argon2id
func (u *StaffUser) SetPassword(password string) error {
	if len(password) < MinPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return err
	}
	u.PasswordHash = string(encoded)
	u.Touch()
	return nil
}

// VerifyPassword checks a password against the stored hash.
// Hashes imported from the previous auth provider are bcrypt.
func (u *StaffUser) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	if strings.HasPrefix(u.PasswordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	}
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(u.PasswordHash))
	return err == nil && ok
}

// NeedsRehash reports whether the stored hash uses a legacy scheme
func (u *StaffUser) NeedsRehash() bool {
	return strings.HasPrefix(u.PasswordHash, "$2")
}

// HasPermission reports whether the user may use a feature.
// Owners and admins have every permission.
func (u *StaffUser) HasPermission(permission string) bool {
	if u.Role == RoleOwner || u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// SetInvitedBy records who invited the user
func (u *StaffUser) SetInvitedBy(userID uuid.UUID) {
	u.InvitedBy = &userID
}

// RecordLogin stores the login time
func (u *StaffUser) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// Deactivate disables the account. The owner cannot be deactivated.
func (u *StaffUser) Deactivate() error {
	if u.Role == RoleOwner {
		return shared.NewDomainError("CANNOT_DEACTIVATE_OWNER", "The restaurant owner cannot be deactivated")
	}
	if !u.IsActive {
		return shared.NewDomainError("INVALID_STATE", "User is already inactive")
	}
	u.IsActive = false
	u.Touch()
	return nil
}
