package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// UserFilter selects user documents. Zero-valued fields are ignored; set
// fields are combined with AND. An empty filter matches every document.
type UserFilter struct {
	ID                 string
	UserName           string // exact, case-sensitive
	NormalizedUserName string
	NormalizedEmail    string
	Login              *domain.LoginKey
	Claim              *domain.Claim
	RoleID             string
}

// UserCollection is the document storage backend for user records.
//
// Field writes (UpdateField, UpdateFields, AddToSet) are atomic for the single
// identified document and are silent no-ops when the document is missing.
type UserCollection interface {
	// InsertOne stores a new document. Returns domain.ErrUserExists when a
	// uniqueness constraint rejects it.
	InsertOne(ctx context.Context, u *domain.User) error
	// DeleteOne removes the document and reports whether it existed.
	DeleteOne(ctx context.Context, id string) (bool, error)
	// ReplaceOne overwrites (or inserts) the whole document.
	ReplaceOne(ctx context.Context, id string, u *domain.User) error
	// FindOne returns the first match or domain.ErrUserNotFound.
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	FindMany(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// UpdateField sets one field path to value.
	UpdateField(ctx context.Context, id, path string, value any) error
	// UpdateFields sets several field paths in one atomic write.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// AddToSet appends value to the array at path unless an equal element exists.
	AddToSet(ctx context.Context, id, path string, value any) error
	// All returns every document in the collection.
	All(ctx context.Context) ([]*domain.User, error)
}
