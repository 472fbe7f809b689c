package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const DefaultRolesCollection = "roles"

// RoleRepository implements ports.RoleRepository using MongoDB.
type RoleRepository struct {
	col *mongo.Collection
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

func NewRoleRepository(db *mongo.Database, name string) *RoleRepository {
	if name == "" {
		name = DefaultRolesCollection
	}
	return &RoleRepository{col: db.Collection(name)}
}

// Create inserts a role, assigning an id when none is set.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *role
	if created.ID == "" {
		created.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.col.InsertOne(ctx, created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return &created, nil
}

func (r *RoleRepository) FindRoleByName(ctx context.Context, normalizedName string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"normalized_name": normalizedName})
}

func (r *RoleRepository) FindRoleByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var role domain.Role
	if err := r.col.FindOne(ctx, filter).Decode(&role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}
