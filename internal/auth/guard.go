package auth

import "dscommerce-be/internal/apperror"

var (
	ErrRoleRequired   = apperror.New(apperror.KindAccessDenied, "Access denied")
	ErrNotSelfOrAdmin = apperror.New(apperror.KindAccessDenied, "Access denied. Should be self or admin")
)

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnerID() int64
}

// Guard holds the authorization rules shared by every service.
type Guard interface {
	RequireRole(p Principal, role Role) error
	AuthorizeOwnership(p Principal, resource Owned) error
}

type guard struct{}

func NewGuard() Guard {
	return guard{}
}

func (guard) RequireRole(p Principal, role Role) error {
	if !p.HasRole(role) {
		return ErrRoleRequired
	}
	return nil
}

// AuthorizeOwnership allows admins and the resource owner.
func (guard) AuthorizeOwnership(p Principal, resource Owned) error {
	if p.HasRole(RoleAdmin) {
		return nil
	}
	if p.UserID != 0 && p.UserID == resource.OwnerID() {
		return nil
	}
	return ErrNotSelfOrAdmin
}
