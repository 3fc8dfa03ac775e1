// Package authz decides whether an identity may perform an action,
// combining role membership with ownership of the targeted resource.
package authz

import (
	"context"
	"errors"
	"juba-homez/internal/models"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrNotOwner         = errors.New("not the owner of this resource")
	ErrNotFound         = errors.New("resource not found")
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotOwner         Reason = "not_owner"
	ReasonNotFound         Reason = "not_found"
)

// Identity is the caller as resolved from a verified token and the current user row.
type Identity struct {
	UserID uint
	Role   string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Resource carries the ownership columns of whatever a scoped action targets.
type Resource struct {
	Found           bool
	OwnerID         uint
	BrokerID        *uint
	PhotographerIDs []uint
}

// Loader fetches ownership for the resource with the given id.
// A missing resource is reported as Resource{Found: false}, not as an error.
type Loader func(ctx context.Context, id uint) (*Resource, error)

type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision {
	return Decision{Reason: r}
}

// Err maps a denial to its sentinel error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonInsufficientRole:
		return ErrInsufficientRole
	case ReasonNotFound:
		return ErrNotFound
	default:
		return ErrNotOwner
	}
}

// Authorize checks role membership and, when res is non-nil, ownership.
func Authorize(id *Identity, roles []string, res *Resource) Decision {
	if id == nil {
		return deny(ReasonUnauthenticated)
	}
	if !hasRole(roles, id.Role) {
		return deny(ReasonInsufficientRole)
	}
	if res == nil {
		return allow
	}
	if !res.Found {
		return deny(ReasonNotFound)
	}

	switch id.Role {
	case models.RoleAdmin:
		return allow
	case models.RoleOwner:
		if res.OwnerID == id.UserID {
			return allow
		}
	case models.RoleBroker:
		if res.BrokerID != nil && *res.BrokerID == id.UserID {
			return allow
		}
	case models.RolePhotographer:
		for _, pid := range res.PhotographerIDs {
			if pid == id.UserID {
				return allow
			}
		}
	}
	return deny(ReasonNotOwner)
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
