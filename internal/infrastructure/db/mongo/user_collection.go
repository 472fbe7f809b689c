package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/pkg/metrics"
)

const DefaultUsersCollection = "users"

// UserCollection implements ports.UserCollection on a MongoDB collection.
type UserCollection struct {
	col *mongo.Collection
}

var _ ports.UserCollection = (*UserCollection)(nil)

// NewUserCollection binds to the named collection (DefaultUsersCollection
// when name is empty).
func NewUserCollection(db *mongo.Database, name string) *UserCollection {
	if name == "" {
		name = DefaultUsersCollection
	}
	return &UserCollection{col: db.Collection(name)}
}

// InsertOne inserts a new user document.
func (c *UserCollection) InsertOne(ctx context.Context, u *domain.User) (err error) {
	defer observe("insert", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := c.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (c *UserCollection) DeleteOne(ctx context.Context, id string) (deleted bool, err error) {
	defer observe("delete", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.DeleteOne(ctx, bson.M{domain.FieldID: id})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// ReplaceOne overwrites the document, inserting it when absent.
func (c *UserCollection) ReplaceOne(ctx context.Context, id string, u *domain.User) (err error) {
	defer observe("replace", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = c.col.ReplaceOne(ctx, bson.M{domain.FieldID: id}, u, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("replace user: %w", err)
	}
	return nil
}

func (c *UserCollection) FindOne(ctx context.Context, filter ports.UserFilter) (_ *domain.User, err error) {
	defer observe("find_one", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := c.col.FindOne(ctx, FilterDocument(filter)).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (c *UserCollection) FindMany(ctx context.Context, filter ports.UserFilter) (_ []*domain.User, err error) {
	defer observe("find_many", time.Now(), &err)
	return c.find(ctx, FilterDocument(filter))
}

// All loads every document. Intended for the queryable-users surface only.
func (c *UserCollection) All(ctx context.Context) (_ []*domain.User, err error) {
	defer observe("all", time.Now(), &err)
	return c.find(ctx, bson.M{})
}

func (c *UserCollection) UpdateField(ctx context.Context, id, path string, value any) (err error) {
	defer observe("set", time.Now(), &err)
	return c.update(ctx, id, bson.M{"$set": bson.M{path: value}})
}

func (c *UserCollection) UpdateFields(ctx context.Context, id string, fields map[string]any) (err error) {
	defer observe("set_many", time.Now(), &err)
	if len(fields) == 0 {
		return nil
	}
	return c.update(ctx, id, bson.M{"$set": bson.M(fields)})
}

func (c *UserCollection) AddToSet(ctx context.Context, id, path string, value any) (err error) {
	defer observe("add_to_set", time.Now(), &err)
	return c.update(ctx, id, bson.M{"$addToSet": bson.M{path: value}})
}

func (c *UserCollection) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := c.col.UpdateOne(ctx, bson.M{domain.FieldID: id}, update); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (c *UserCollection) find(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := c.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]*domain.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// FilterDocument translates a UserFilter into a MongoDB query document.
func FilterDocument(f ports.UserFilter) bson.M {
	filter := bson.M{}
	if f.ID != "" {
		filter[domain.FieldID] = f.ID
	}
	if f.UserName != "" {
		filter[domain.FieldUserName] = f.UserName
	}
	if f.NormalizedUserName != "" {
		filter[domain.FieldNormalizedUserName] = f.NormalizedUserName
	}
	if f.NormalizedEmail != "" {
		filter[domain.FieldNormalizedEmail] = f.NormalizedEmail
	}
	if f.Login != nil {
		filter[domain.FieldLogins] = bson.M{"$elemMatch": bson.M{
			"login_provider": f.Login.Provider,
			"provider_key":   f.Login.Key,
		}}
	}
	if f.Claim != nil {
		filter[domain.FieldClaims] = bson.M{"$elemMatch": bson.M{
			"type":  f.Claim.Type,
			"value": f.Claim.Value,
		}}
	}
	if f.RoleID != "" {
		filter[domain.FieldRoles] = f.RoleID
	}
	return filter
}

// observe records the outcome of a collection round trip.
func observe(op string, start time.Time, errp *error) {
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "ok"
	if err := *errp; err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			result = "not_found"
		case errors.Is(err, domain.ErrUserExists):
			result = "duplicate"
		default:
			result = "error"
		}
	}
	metrics.StoreOperationsTotal.WithLabelValues(op, result).Inc()
}
