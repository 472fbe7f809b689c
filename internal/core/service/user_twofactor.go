package service

import (
	"context"
	"errors"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

func (s *UserStore) SetTwoFactorEnabled(ctx context.Context, u *domain.User, enabled bool) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.TwoFactorEnabled = enabled
	return s.setField(ctx, u, domain.FieldTwoFactorEnabled, enabled)
}

func (s *UserStore) GetTwoFactorEnabled(ctx context.Context, u *domain.User) (bool, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return false, err
	}
	return stored.TwoFactorEnabled, nil
}

func (s *UserStore) SetAuthenticatorKey(ctx context.Context, u *domain.User, key string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.AuthenticatorKey = key
	return s.setField(ctx, u, domain.FieldAuthenticatorKey, key)
}

func (s *UserStore) GetAuthenticatorKey(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.AuthenticatorKey, nil
}

// ReplaceCodes overwrites the recovery code collection; every code starts
// unredeemed.
func (s *UserStore) ReplaceCodes(ctx context.Context, u *domain.User, codes ...string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.RecoveryCodes = domain.NewRecoveryCodes(codes)
	return s.setField(ctx, u, domain.FieldRecoveryCodes, u.RecoveryCodes)
}

// RedeemCode marks code as used. It reports false when the user no longer
// exists or the code is unknown or already redeemed. The persisted
// collection is authoritative; the caller's copy is brought in line with it.
func (s *UserStore) RedeemCode(ctx context.Context, u *domain.User, code string) (bool, error) {
	if err := begin(ctx, u); err != nil {
		return false, err
	}

	stored, err := s.users.FindOne(ctx, ports.UserFilter{ID: u.ID})
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.wrap(err, "redeem", u.ID, domain.FieldRecoveryCodes)
	}

	codes, ok := domain.RedeemRecoveryCode(stored.RecoveryCodes, code)
	if !ok {
		u.RecoveryCodes = stored.RecoveryCodes
		return false, nil
	}
	u.RecoveryCodes = codes
	if err := s.setField(ctx, u, domain.FieldRecoveryCodes, codes); err != nil {
		return false, err
	}
	return true, nil
}

// CountCodes returns the number of unredeemed recovery codes.
func (s *UserStore) CountCodes(ctx context.Context, u *domain.User) (int, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return 0, err
	}
	return domain.CountUnredeemed(stored.RecoveryCodes), nil
}
