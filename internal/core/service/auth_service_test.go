package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

func newTestAuthService(t *testing.T) (*AuthService, *UserStore, *memCollection) {
	t.Helper()
	store, col := newTestStore(t)
	svc := NewAuthService(store, UpperInvariantNormalizer{}, "secret", time.Hour, LockoutPolicy{
		MaxFailedAttempts: 3,
		Duration:          10 * time.Minute,
	}, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, col
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, col := newTestAuthService(t)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		UserName: "alice",
		Password: "pass123",
		Email:    "Alice@Example.com",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.SecurityStamp == "" || !user.LockoutEnabled {
		t.Fatalf("expected security stamp and lockout enabled, got %+v", user)
	}

	stored := col.stored(t, user.ID)
	if stored == nil || stored.NormalizedUserName != "ALICE" || stored.NormalizedEmail != "ALICE@EXAMPLE.COM" {
		t.Fatalf("unexpected stored user: %+v", stored)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Password: "pass"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{UserName: "bob"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{UserName: "carol", Password: "pw"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{UserName: "carol", Password: "pw"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{UserName: "dave", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.AddToRole(ctx, user, "ADMIN"); err != nil {
		t.Fatalf("AddToRole: %v", err)
	}

	token, got, err := svc.Login(ctx, "Dave", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user %s", got.ID)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	if err != nil || !parsed.Valid {
		t.Fatalf("invalid token: %v", err)
	}
	if claims["sub"] != user.ID || claims["username"] != "dave" {
		t.Fatalf("unexpected claims %v", claims)
	}
	roles, _ := claims["roles"].([]any)
	if len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("unexpected roles claim %v", claims["roles"])
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, _, err := svc.Login(context.Background(), "ghost", "pw"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Login_LocksOutAfterMaxFailures(t *testing.T) {
	svc, _, col := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{UserName: "erin", Password: "right"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 1; i <= 2; i++ {
		if _, _, err := svc.Login(ctx, "erin", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
		if got := col.stored(t, user.ID).AccessFailedCount; got != i {
			t.Fatalf("attempt %d: access_failed_count = %d", i, got)
		}
	}

	if _, _, err := svc.Login(ctx, "erin", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("third attempt: expected ErrInvalidCredentials, got %v", err)
	}
	stored := col.stored(t, user.ID)
	if stored.LockoutEnd == nil || !stored.LockoutEnd.Equal(fixedNow.Add(10*time.Minute)) {
		t.Fatalf("expected lockout end to be set, got %v", stored.LockoutEnd)
	}
	if stored.AccessFailedCount != 0 {
		t.Fatalf("expected counter reset after lockout, got %d", stored.AccessFailedCount)
	}

	if _, _, err := svc.Login(ctx, "erin", "right"); !errors.Is(err, domain.ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut, got %v", err)
	}

	svc.now = func() time.Time { return fixedNow.Add(11 * time.Minute) }
	if _, _, err := svc.Login(ctx, "erin", "right"); err != nil {
		t.Fatalf("expected login after lockout expiry, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsCounter(t *testing.T) {
	svc, _, col := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{UserName: "fay", Password: "right"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "fay", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "fay", "right"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := col.stored(t, user.ID).AccessFailedCount; got != 0 {
		t.Fatalf("expected counter reset, got %d", got)
	}
}
