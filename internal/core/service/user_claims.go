package service

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

func (s *UserStore) GetClaims(ctx context.Context, u *domain.User) ([]domain.Claim, error) {
	stored, err := s.reload(ctx, u)
	if err != nil {
		return nil, err
	}
	return stored.Claims, nil
}

// AddClaims issues one field-add per claim. Adding a claim that is already
// present is a no-op in storage.
func (s *UserStore) AddClaims(ctx context.Context, u *domain.User, claims ...domain.Claim) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	for _, c := range claims {
		u.Claims = domain.AddClaim(u.Claims, c)
		if err := s.addToSet(ctx, u, domain.FieldClaims, c); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceClaim removes every claim with claim's type, appends newClaim and
// persists the whole claim collection.
func (s *UserStore) ReplaceClaim(ctx context.Context, u *domain.User, claim, newClaim domain.Claim) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Claims = domain.ReplaceClaim(u.Claims, claim, newClaim)
	return s.setField(ctx, u, domain.FieldClaims, u.Claims)
}

func (s *UserStore) RemoveClaims(ctx context.Context, u *domain.User, claims ...domain.Claim) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.Claims = domain.RemoveClaims(u.Claims, claims...)
	return s.setField(ctx, u, domain.FieldClaims, u.Claims)
}

func (s *UserStore) GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User, error) {
	return s.findMany(ctx, ports.UserFilter{Claim: &claim})
}
