package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

func TestImportService_Process_CreatesUserWithRolesAndClaims(t *testing.T) {
	store, col := newTestStore(t)
	svc := NewImportService(store, UpperInvariantNormalizer{}, zerolog.Nop())
	ctx := context.Background()

	err := svc.Process(ctx, ports.UserImportInput{
		UserName: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Roles:    []string{"admin", "ghost"},
		Claims:   []ports.ClaimInput{{Type: "dept", Value: "ops"}},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	u, err := store.FindByName(ctx, "ALICE")
	if err != nil || u == nil {
		t.Fatalf("imported user not found: %v", err)
	}
	stored := col.stored(t, u.ID)
	if !reflect.DeepEqual(stored.Roles, []string{"r-admin"}) {
		t.Fatalf("roles = %v", stored.Roles)
	}
	if !reflect.DeepEqual(stored.Claims, []domain.Claim{{Type: "dept", Value: "ops"}}) {
		t.Fatalf("claims = %+v", stored.Claims)
	}
	if stored.NormalizedEmail != "ALICE@EXAMPLE.COM" {
		t.Fatalf("normalized email = %q", stored.NormalizedEmail)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("password hash mismatch: %v", err)
	}
}

func TestImportService_Process_SkipsExisting(t *testing.T) {
	store, col := newTestStore(t)
	svc := NewImportService(store, UpperInvariantNormalizer{}, zerolog.Nop())
	ctx := context.Background()
	mustCreate(t, store, "bob")
	col.resetWrites()

	if err := svc.Process(ctx, ports.UserImportInput{UserName: "Bob", Roles: []string{"admin"}}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if w := col.writeLog(); len(w) != 0 {
		t.Fatalf("expected no writes for existing user, got %v", w)
	}
}

func TestImportService_Process_WithoutPassword(t *testing.T) {
	store, col := newTestStore(t)
	svc := NewImportService(store, UpperInvariantNormalizer{}, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Process(ctx, ports.UserImportInput{UserName: "carol"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	u, _ := store.FindByName(ctx, "CAROL")
	if u == nil {
		t.Fatalf("user not created")
	}
	if col.stored(t, u.ID).PasswordHash != "" {
		t.Fatalf("expected no password hash")
	}
}

func TestImportService_Process_StorageError(t *testing.T) {
	store, col := newTestStore(t)
	svc := NewImportService(store, UpperInvariantNormalizer{}, zerolog.Nop())
	boom := errors.New("boom")
	col.failOn["insert"] = boom

	if err := svc.Process(context.Background(), ports.UserImportInput{UserName: "dan"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}
