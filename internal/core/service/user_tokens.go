package service

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// SetToken upserts the (provider, name) token and persists the whole token
// collection in one field-set.
func (s *UserStore) SetToken(ctx context.Context, u *domain.User, loginProvider, name, value string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Tokens = domain.ApplyTokenUpsert(u.Tokens, loginProvider, name, value)
	return s.setField(ctx, u, domain.FieldTokens, u.Tokens)
}

func (s *UserStore) RemoveToken(ctx context.Context, u *domain.User, loginProvider, name string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Tokens = domain.RemoveToken(u.Tokens, loginProvider, name)
	return s.setField(ctx, u, domain.FieldTokens, u.Tokens)
}

// GetToken reads through storage like every other accessor.
func (s *UserStore) GetToken(ctx context.Context, u *domain.User, loginProvider, name string) (string, bool, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", false, err
	}
	value, ok := domain.FindToken(stored.Tokens, loginProvider, name)
	return value, ok, nil
}
