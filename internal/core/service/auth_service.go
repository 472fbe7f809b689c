package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/pkg/metrics"
)

// AccountStore is the slice of the user store the account flows need.
type AccountStore interface {
	ports.UserStore
	ports.UserLockoutStore
	ports.UserRoleStore
}

// LockoutPolicy controls how failed sign-ins lock an account.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// AuthService implements registration and sign-in on top of the user store.
type AuthService struct {
	store      AccountStore
	normalizer ports.LookupNormalizer
	jwtSecret  string
	tokenTTL   time.Duration
	lockout    LockoutPolicy
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(
	store AccountStore,
	normalizer ports.LookupNormalizer,
	jwtSecret string,
	tokenTTL time.Duration,
	lockout LockoutPolicy,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if lockout.MaxFailedAttempts <= 0 {
		lockout.MaxFailedAttempts = 5
	}
	if lockout.Duration <= 0 {
		lockout.Duration = 5 * time.Minute
	}
	return &AuthService{
		store:      store,
		normalizer: normalizer,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		lockout:    lockout,
		log:        log,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.UserName == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UserName:           in.UserName,
		NormalizedUserName: s.normalizer.NormalizeName(in.UserName),
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		PasswordHash:       string(hash),
		SecurityStamp:      uuid.NewString(),
		LockoutEnabled:     true,
	}

	result, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	metrics.UsersCreatedTotal.Inc()
	return user, nil
}

// Login verifies the password and issues an access token. Failed attempts
// count towards lockout; a successful sign-in resets the counter.
func (s *AuthService) Login(ctx context.Context, userName, password string) (string, *domain.User, error) {
	if userName == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.FindByName(ctx, s.normalizer.NormalizeName(userName))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		metrics.LoginAttemptsTotal.WithLabelValues("unknown_user").Inc()
		return "", nil, domain.ErrUserNotFound
	}

	now := s.now().UTC()
	if user.IsLockedOut(now) {
		metrics.LoginAttemptsTotal.WithLabelValues("locked_out").Inc()
		return "", nil, domain.ErrLockedOut
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_password").Inc()
		if err := s.recordFailure(ctx, user, now); err != nil {
			return "", nil, err
		}
		return "", nil, domain.ErrInvalidCredentials
	}

	if user.AccessFailedCount > 0 {
		if err := s.store.ResetAccessFailedCount(ctx, user); err != nil {
			return "", nil, err
		}
	}

	roles, err := s.store.GetRoles(ctx, user)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user, roles)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, user *domain.User, now time.Time) error {
	if !user.LockoutEnabled {
		return nil
	}
	count, err := s.store.IncrementAccessFailedCount(ctx, user)
	if err != nil {
		return err
	}
	if count < s.lockout.MaxFailedAttempts {
		return nil
	}

	end := now.Add(s.lockout.Duration)
	if err := s.store.SetLockoutEndDate(ctx, user, &end); err != nil {
		return err
	}
	s.log.Warn().Str("user_id", user.ID).Time("lockout_end", end).Msg("user locked out")
	return s.store.ResetAccessFailedCount(ctx, user)
}

func (s *AuthService) generateToken(user *domain.User, roles []string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.UserName,
		"roles":    roles,
		"sstamp":   user.SecurityStamp,
		"exp":      s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
