package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/pkg/metrics"
)

// ImportStore is the slice of the user store bulk provisioning needs.
type ImportStore interface {
	ports.UserStore
	ports.UserRoleStore
	ports.UserClaimStore
}

type importService struct {
	store      ImportStore
	normalizer ports.LookupNormalizer
	log        zerolog.Logger
}

// NewImportService returns an ImportService implementation.
func NewImportService(store ImportStore, normalizer ports.LookupNormalizer, log zerolog.Logger) ports.ImportService {
	return &importService{
		store:      store,
		normalizer: normalizer,
		log:        log,
	}
}

// Process provisions a single user with its roles and claims. Users that
// already exist are skipped so a batch can be replayed safely.
func (s *importService) Process(ctx context.Context, in ports.UserImportInput) error {
	normalized := s.normalizer.NormalizeName(in.UserName)

	// 1. Idempotency check: silently skip users that already exist.
	existing, err := s.store.FindByName(ctx, normalized)
	if err != nil {
		metrics.ImportErrorsTotal.WithLabelValues("lookup_failed").Inc()
		return fmt.Errorf("import user: %w", err)
	}
	if existing != nil {
		s.log.Debug().Str("user_name", in.UserName).Msg("user already provisioned, skipped")
		return nil
	}

	// 2. Build the user; the password is optional.
	user := &domain.User{
		UserName:           in.UserName,
		NormalizedUserName: normalized,
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		SecurityStamp:      uuid.NewString(),
		LockoutEnabled:     true,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			metrics.ImportErrorsTotal.WithLabelValues("hash_failed").Inc()
			return fmt.Errorf("import user: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	// 3. Create.
	result, err := s.store.Create(ctx, user)
	if err != nil {
		metrics.ImportErrorsTotal.WithLabelValues("create_failed").Inc()
		return fmt.Errorf("import user: create: %w", err)
	}
	if err := result.Err(); err != nil {
		metrics.ImportErrorsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("import user: %w", err)
	}
	metrics.UsersCreatedTotal.Inc()

	// 4. Role membership. Unknown roles are ignored by the store.
	for _, role := range in.Roles {
		if err := s.store.AddToRole(ctx, user, s.normalizer.NormalizeName(role)); err != nil {
			metrics.ImportErrorsTotal.WithLabelValues("role_failed").Inc()
			return fmt.Errorf("import user: add role %s: %w", role, err)
		}
	}

	// 5. Claims.
	if len(in.Claims) > 0 {
		claims := lo.Map(in.Claims, func(c ports.ClaimInput, _ int) domain.Claim {
			return domain.Claim{Type: c.Type, Value: c.Value}
		})
		if err := s.store.AddClaims(ctx, user, claims...); err != nil {
			metrics.ImportErrorsTotal.WithLabelValues("claims_failed").Inc()
			return fmt.Errorf("import user: add claims: %w", err)
		}
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("user_name", user.UserName).
		Int("roles", len(in.Roles)).
		Int("claims", len(in.Claims)).
		Msg("user imported")

	return nil
}
