package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the user store relies on. The unique
// index on normalized_user_name turns a lost create race into a duplicate
// key error instead of a second document.
func (c *UserCollection) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_user_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_normalized_user_name"),
		},
		{
			Keys:    bson.D{{Key: "normalized_email", Value: 1}},
			Options: options.Index().SetName("ix_normalized_email"),
		},
		{
			Keys:    bson.D{{Key: "logins.login_provider", Value: 1}, {Key: "logins.provider_key", Value: 1}},
			Options: options.Index().SetName("ix_logins"),
		},
		{
			Keys:    bson.D{{Key: "claims.type", Value: 1}, {Key: "claims.value", Value: 1}},
			Options: options.Index().SetName("ix_claims"),
		},
		{
			Keys:    bson.D{{Key: "roles", Value: 1}},
			Options: options.Index().SetName("ix_roles"),
		},
	}

	if _, err := c.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique role name index.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ux_normalized_name"),
	})
	if err != nil {
		return fmt.Errorf("ensure role indexes: %w", err)
	}
	return nil
}
