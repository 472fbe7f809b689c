package service

import (
	"context"
	"time"

	"github.com/99minutos/identity-store/internal/core/domain"
)

func (s *UserStore) GetLockoutEndDate(ctx context.Context, u *domain.User) (*time.Time, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return nil, err
	}
	return stored.LockoutEnd, nil
}

// SetLockoutEndDate stores end (nil clears the lockout). Whether end itself
// is still locked out is for the caller to decide.
func (s *UserStore) SetLockoutEndDate(ctx context.Context, u *domain.User, end *time.Time) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	if end != nil {
		t := end.UTC()
		end = &t
	}
	u.LockoutEnd = end
	return s.setField(ctx, u, domain.FieldLockoutEnd, end)
}

// IncrementAccessFailedCount bumps the caller's counter and persists it,
// returning the new count.
func (s *UserStore) IncrementAccessFailedCount(ctx context.Context, u *domain.User) (int, error) {
	if err := begin(ctx, u); err != nil {
		return 0, err
	}
	u.AccessFailedCount++
	if err := s.setField(ctx, u, domain.FieldAccessFailedCount, u.AccessFailedCount); err != nil {
		return 0, err
	}
	return u.AccessFailedCount, nil
}

func (s *UserStore) ResetAccessFailedCount(ctx context.Context, u *domain.User) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.AccessFailedCount = 0
	return s.setField(ctx, u, domain.FieldAccessFailedCount, 0)
}

func (s *UserStore) GetAccessFailedCount(ctx context.Context, u *domain.User) (int, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return 0, err
	}
	return stored.AccessFailedCount, nil
}

func (s *UserStore) GetLockoutEnabled(ctx context.Context, u *domain.User) (bool, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return false, err
	}
	return stored.LockoutEnabled, nil
}

func (s *UserStore) SetLockoutEnabled(ctx context.Context, u *domain.User, enabled bool) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.LockoutEnabled = enabled
	return s.setField(ctx, u, domain.FieldLockoutEnabled, enabled)
}
