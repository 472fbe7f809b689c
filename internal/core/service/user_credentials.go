package service

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// SetPasswordHash stores an opaque hash produced by the caller. An empty
// hash clears the password.
func (s *UserStore) SetPasswordHash(ctx context.Context, u *domain.User, passwordHash string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return s.setField(ctx, u, domain.FieldPasswordHash, passwordHash)
}

func (s *UserStore) GetPasswordHash(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.PasswordHash, nil
}

func (s *UserStore) HasPassword(ctx context.Context, u *domain.User) (bool, error) {
	hash, err := s.GetPasswordHash(ctx, u)
	if err != nil {
		return false, err
	}
	return hash != "", nil
}

func (s *UserStore) SetSecurityStamp(ctx context.Context, u *domain.User, stamp string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.SecurityStamp = stamp
	return s.setField(ctx, u, domain.FieldSecurityStamp, stamp)
}

func (s *UserStore) GetSecurityStamp(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.SecurityStamp, nil
}
