package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// RoleFinder resolves roles owned by the role store. Both methods return
// domain.ErrRoleNotFound when nothing matches.
type RoleFinder interface {
	FindRoleByName(ctx context.Context, normalizedName string) (*domain.Role, error)
	FindRoleByID(ctx context.Context, id string) (*domain.Role, error)
}

// RoleRepository extends RoleFinder with role creation for administration.
type RoleRepository interface {
	RoleFinder
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
}
