package service

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

func (s *UserStore) GetUserID(ctx context.Context, u *domain.User) (string, error) {
	if err := begin(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *UserStore) GetUserName(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.UserName, nil
}

// SetUserName updates the user name and cascades into the normalized name.
// The two writes are not atomic together.
func (s *UserStore) SetUserName(ctx context.Context, u *domain.User, userName string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.UserName = userName
	if err := s.SetNormalizedUserName(ctx, u, s.normalizer.NormalizeName(userName)); err != nil {
		return err
	}
	return s.setField(ctx, u, domain.FieldUserName, userName)
}

func (s *UserStore) GetNormalizedUserName(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.NormalizedUserName, nil
}

func (s *UserStore) SetNormalizedUserName(ctx context.Context, u *domain.User, normalizedName string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.NormalizedUserName = normalizedName
	return s.setField(ctx, u, domain.FieldNormalizedUserName, normalizedName)
}

// SetEmail updates the email and cascades into the normalized email. The two
// writes are not atomic together.
func (s *UserStore) SetEmail(ctx context.Context, u *domain.User, email string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Email = email
	if err := s.SetNormalizedEmail(ctx, u, s.normalizer.NormalizeEmail(email)); err != nil {
		return err
	}
	return s.setField(ctx, u, domain.FieldEmail, email)
}

func (s *UserStore) GetEmail(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.Email, nil
}

func (s *UserStore) GetEmailConfirmed(ctx context.Context, u *domain.User) (bool, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return false, err
	}
	return stored.EmailConfirmed, nil
}

func (s *UserStore) SetEmailConfirmed(ctx context.Context, u *domain.User, confirmed bool) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.EmailConfirmed = confirmed
	return s.setField(ctx, u, domain.FieldEmailConfirmed, confirmed)
}

func (s *UserStore) GetNormalizedEmail(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.NormalizedEmail, nil
}

func (s *UserStore) SetNormalizedEmail(ctx context.Context, u *domain.User, normalizedEmail string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.NormalizedEmail = normalizedEmail
	return s.setField(ctx, u, domain.FieldNormalizedEmail, normalizedEmail)
}

func (s *UserStore) SetPhoneNumber(ctx context.Context, u *domain.User, phoneNumber string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.PhoneNumber = phoneNumber
	return s.setField(ctx, u, domain.FieldPhoneNumber, phoneNumber)
}

func (s *UserStore) GetPhoneNumber(ctx context.Context, u *domain.User) (string, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return "", err
	}
	return stored.PhoneNumber, nil
}

func (s *UserStore) GetPhoneNumberConfirmed(ctx context.Context, u *domain.User) (bool, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return false, err
	}
	return stored.PhoneNumberConfirmed, nil
}

func (s *UserStore) SetPhoneNumberConfirmed(ctx context.Context, u *domain.User, confirmed bool) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.PhoneNumberConfirmed = confirmed
	return s.setField(ctx, u, domain.FieldPhoneNumberConfirmed, confirmed)
}
