package service

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// AddLogin field-adds login unless the caller's user already holds a login
// with the same (provider, key).
func (s *UserStore) AddLogin(ctx context.Context, u *domain.User, login domain.UserLogin) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	logins, added := domain.AddLogin(u.Logins, login)
	if !added {
		return nil
	}
	u.Logins = logins
	return s.addToSet(ctx, u, domain.FieldLogins, login)
}

func (s *UserStore) RemoveLogin(ctx context.Context, u *domain.User, loginProvider, providerKey string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Logins = domain.RemoveLogin(u.Logins, domain.LoginKey{Provider: loginProvider, Key: providerKey})
	return s.setField(ctx, u, domain.FieldLogins, u.Logins)
}

func (s *UserStore) GetLogins(ctx context.Context, u *domain.User) ([]domain.UserLogin, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return nil, err
	}
	return stored.Logins, nil
}

func (s *UserStore) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User, error) {
	return s.findOne(ctx, ports.UserFilter{Login: &domain.LoginKey{Provider: loginProvider, Key: providerKey}})
}
