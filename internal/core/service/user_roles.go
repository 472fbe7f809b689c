package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// AddToRole resolves the role by name and adds its id to the user's roles.
// Unknown roles are ignored.
func (s *UserStore) AddToRole(ctx context.Context, u *domain.User, normalizedRoleName string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	role, err := s.findRoleByName(ctx, normalizedRoleName)
	if err != nil || role == nil {
		return err
	}
	u.Roles = domain.AddRole(u.Roles, role.ID)
	return s.setField(ctx, u, domain.FieldRoles, u.Roles)
}

// RemoveFromRole drops the role's id from the user's roles. Unknown roles are
// ignored.
func (s *UserStore) RemoveFromRole(ctx context.Context, u *domain.User, normalizedRoleName string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	role, err := s.findRoleByName(ctx, normalizedRoleName)
	if err != nil || role == nil {
		return err
	}
	u.Roles = domain.RemoveRole(u.Roles, role.ID)
	return s.setField(ctx, u, domain.FieldRoles, u.Roles)
}

// GetRoles returns the names of the persisted user's roles. Role ids that no
// longer resolve are dropped.
func (s *UserStore) GetRoles(ctx context.Context, u *domain.User) ([]string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(stored.Roles))
	for _, id := range stored.Roles {
		role, err := s.roles.FindRoleByID(ctx, id)
		if errors.Is(err, domain.ErrRoleNotFound) {
			s.log.Warn().Str("user_id", stored.ID).Str("role_id", id).Msg("dangling role reference")
			continue
		}
		if err != nil {
			return nil, s.wrap(err, "roles", stored.ID, domain.FieldRoles)
		}
		names = append(names, role.Name)
	}
	return names, nil
}

func (s *UserStore) IsInRole(ctx context.Context, u *domain.User, normalizedRoleName string) (bool, error) {
	if err := begin(ctx, u); err != nil {
		return false, err
	}
	role, err := s.findRoleByName(ctx, normalizedRoleName)
	if err != nil || role == nil {
		return false, err
	}
	stored, err := s.reload(ctx, u)
	if err != nil {
		return false, err
	}
	return lo.Contains(stored.Roles, role.ID), nil
}

func (s *UserStore) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	role, err := s.findRoleByName(ctx, normalizedRoleName)
	if err != nil || role == nil {
		return nil, err
	}
	return s.findMany(ctx, ports.UserFilter{RoleID: role.ID})
}

// findRoleByName returns (nil, nil) for unknown roles.
func (s *UserStore) findRoleByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error) {
	role, err := s.roles.FindRoleByName(ctx, normalizedRoleName)
	if errors.Is(err, domain.ErrRoleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("userstore").With("role", normalizedRoleName).Wrapf(err, "resolve role")
	}
	return role, nil
}
