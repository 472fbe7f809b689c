package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	UserName    string
	Password    string
	Email       string
	PhoneNumber string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, userName, password string) (string, *domain.User, error)
}
