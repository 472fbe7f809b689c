package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

var (
	_ ports.UserStore                      = (*UserStore)(nil)
	_ ports.UserPatchStore                 = (*UserStore)(nil)
	_ ports.UserClaimStore                 = (*UserStore)(nil)
	_ ports.UserLoginStore                 = (*UserStore)(nil)
	_ ports.UserRoleStore                  = (*UserStore)(nil)
	_ ports.UserPasswordStore              = (*UserStore)(nil)
	_ ports.UserSecurityStampStore         = (*UserStore)(nil)
	_ ports.UserEmailStore                 = (*UserStore)(nil)
	_ ports.UserPhoneNumberStore           = (*UserStore)(nil)
	_ ports.UserLockoutStore               = (*UserStore)(nil)
	_ ports.UserTwoFactorStore             = (*UserStore)(nil)
	_ ports.UserAuthenticationTokenStore   = (*UserStore)(nil)
	_ ports.UserAuthenticatorKeyStore      = (*UserStore)(nil)
	_ ports.UserTwoFactorRecoveryCodeStore = (*UserStore)(nil)
	_ ports.QueryableUserStore             = (*UserStore)(nil)
)

// UserStore persists identity users in a document collection. It holds no
// mutable state of its own: all state lives in the collection and in the
// caller-owned *domain.User passed to each call. Atomicity is delegated to
// the collection's single-document field writes.
type UserStore struct {
	users      ports.UserCollection
	roles      ports.RoleFinder
	normalizer ports.LookupNormalizer
	guard      ports.CreateGuard
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures optional UserStore collaborators.
type Option func(*UserStore)

// WithCreateGuard serialises Create per user name through g.
func WithCreateGuard(g ports.CreateGuard) Option {
	return func(s *UserStore) { s.guard = g }
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *UserStore) { s.now = now }
}

func NewUserStore(
	users ports.UserCollection,
	roles ports.RoleFinder,
	normalizer ports.LookupNormalizer,
	log zerolog.Logger,
	opts ...Option,
) *UserStore {
	s := &UserStore{
		users:      users,
		roles:      roles,
		normalizer: normalizer,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts u unless a user with the same user name (exact match)
// already exists, then re-persists the email through the SetEmail path.
//
// The existence check and the insert are two round trips. The unique index on
// normalized_user_name and the optional create guard close the race; a
// duplicate-key rejection is reported as DuplicateUserName.
func (s *UserStore) Create(ctx context.Context, u *domain.User) (domain.IdentityResult, error) {
	if err := begin(ctx, u); err != nil {
		return domain.IdentityResult{}, err
	}

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, s.guardKey(u))
		if errors.Is(err, domain.ErrConcurrencyFailure) {
			s.log.Warn().Str("user_name", u.UserName).Msg("concurrent create for user name")
			return domain.Failed(domain.ConcurrencyFailure()), nil
		}
		if err != nil {
			return domain.IdentityResult{}, s.wrap(err, "create", u.ID, "")
		}
		defer release()
	}

	_, err := s.users.FindOne(ctx, ports.UserFilter{UserName: u.UserName})
	switch {
	case err == nil:
		return domain.Failed(domain.DuplicateUserName(u.UserName)), nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return domain.IdentityResult{}, s.wrap(err, "create", u.ID, "")
	}

	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	}
	u.EnsureCollections()

	if err := s.users.InsertOne(ctx, u); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return domain.Failed(domain.DuplicateUserName(u.UserName)), nil
		}
		return domain.IdentityResult{}, s.wrap(err, "create", u.ID, "")
	}

	if err := s.SetEmail(ctx, u, u.Email); err != nil {
		return domain.IdentityResult{}, err
	}

	s.log.Info().Str("user_id", u.ID).Str("user_name", u.UserName).Msg("user created")
	return domain.Success(), nil
}

// Delete removes the user document. A missing document is reported as a
// failed result with code UserNotFound.
func (s *UserStore) Delete(ctx context.Context, u *domain.User) (domain.IdentityResult, error) {
	if err := begin(ctx, u); err != nil {
		return domain.IdentityResult{}, err
	}

	deleted, err := s.users.DeleteOne(ctx, u.ID)
	if err != nil {
		return domain.IdentityResult{}, s.wrap(err, "delete", u.ID, "")
	}
	if !deleted {
		return domain.Failed(domain.UserNotFound(u.ID)), nil
	}

	s.log.Info().Str("user_id", u.ID).Msg("user deleted")
	return domain.Success(), nil
}

// Update re-runs the email path and then replaces the whole persisted
// document with u. Field writes made by concurrent calls since u was loaded
// are overwritten; prefer Save or PatchFields for routine saves.
func (s *UserStore) Update(ctx context.Context, u *domain.User) (domain.IdentityResult, error) {
	if err := begin(ctx, u); err != nil {
		return domain.IdentityResult{}, err
	}
	if err := s.SetEmail(ctx, u, u.Email); err != nil {
		return domain.IdentityResult{}, err
	}
	if err := s.ReplaceWhole(ctx, u); err != nil {
		return domain.IdentityResult{}, err
	}
	return domain.Success(), nil
}

// ReplaceWhole upserts u as the complete document.
func (s *UserStore) ReplaceWhole(ctx context.Context, u *domain.User) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	u.EnsureCollections()
	if err := s.users.ReplaceOne(ctx, u.ID, u); err != nil {
		return s.wrap(err, "replace", u.ID, "")
	}
	return nil
}

// PatchFields persists the named top-level fields of u in one atomic write.
// Other fields of the stored document are left untouched.
func (s *UserStore) PatchFields(ctx context.Context, u *domain.User, fields ...string) error {
	if err := begin(ctx, u); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	u.EnsureCollections()
	data, err := bson.Marshal(u)
	if err != nil {
		return s.wrap(err, "patch", u.ID, "")
	}
	raw := bson.Raw(data)

	set := make(map[string]any, len(fields))
	for _, f := range fields {
		if f == domain.FieldID {
			continue
		}
		v, err := raw.LookupErr(f)
		if err != nil {
			return oops.In("userstore").With("user_id", u.ID).With("field", f).Errorf("unknown user field %q", f)
		}
		set[f] = v
	}
	if len(set) == 0 {
		return nil
	}

	if err := s.users.UpdateFields(ctx, u.ID, set); err != nil {
		return s.wrap(err, "patch", u.ID, "")
	}
	return nil
}

// Save diffs u against the persisted document and patches only the changed
// fields. When the document is missing u is inserted whole. It returns the
// fields written.
func (s *UserStore) Save(ctx context.Context, u *domain.User) ([]string, error) {
	if err := begin(ctx, u); err != nil {
		return nil, err
	}

	stored, err := s.users.FindOne(ctx, ports.UserFilter{ID: u.ID})
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, s.ReplaceWhole(ctx, u)
	}
	if err != nil {
		return nil, s.wrap(err, "save", u.ID, "")
	}

	u.EnsureCollections()
	changed, err := domain.ChangedFields(stored, u)
	if err != nil {
		return nil, s.wrap(err, "save", u.ID, "")
	}
	if err := s.PatchFields(ctx, u, changed...); err != nil {
		return nil, err
	}
	return changed, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findOne(ctx, ports.UserFilter{ID: id})
}

func (s *UserStore) FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error) {
	return s.findOne(ctx, ports.UserFilter{NormalizedUserName: normalizedUserName})
}

func (s *UserStore) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User, error) {
	return s.findOne(ctx, ports.UserFilter{NormalizedEmail: normalizedEmail})
}

// Users loads the entire collection and exposes it for in-memory filtering.
func (s *UserStore) Users(ctx context.Context) (*domain.UserQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := s.users.All(ctx)
	if err != nil {
		return nil, s.wrap(err, "scan", "", "")
	}
	return domain.NewUserQuery(all), nil
}

// findOne returns (nil, nil) when nothing matches.
func (s *UserStore) findOne(ctx context.Context, f ports.UserFilter) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := s.users.FindOne(ctx, f)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(err, "find", f.ID, "")
	}
	return u, nil
}

func (s *UserStore) findMany(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users, err := s.users.FindMany(ctx, f)
	if err != nil {
		return nil, s.wrap(err, "find", "", "")
	}
	return users, nil
}

// reload re-reads the persisted user. When the document is gone, the
// caller's in-memory copy is returned instead.
func (s *UserStore) reload(ctx context.Context, u *domain.User) (*domain.User, error) {
	if err := begin(ctx, u); err != nil {
		return nil, err
	}
	stored, err := s.users.FindOne(ctx, ports.UserFilter{ID: u.ID})
	if errors.Is(err, domain.ErrUserNotFound) {
		return u, nil
	}
	if err != nil {
		return nil, s.wrap(err, "reload", u.ID, "")
	}
	return stored, nil
}

// setField issues a single field-set for u's document.
func (s *UserStore) setField(ctx context.Context, u *domain.User, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.users.UpdateField(ctx, u.ID, path, value); err != nil {
		return s.wrap(err, "set", u.ID, path)
	}
	s.log.Debug().Str("user_id", u.ID).Str("field", path).Msg("field set")
	return nil
}

// addToSet issues a single field-add for u's document.
func (s *UserStore) addToSet(ctx context.Context, u *domain.User, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.users.AddToSet(ctx, u.ID, path, value); err != nil {
		return s.wrap(err, "add", u.ID, path)
	}
	s.log.Debug().Str("user_id", u.ID).Str("field", path).Msg("field add")
	return nil
}

func (s *UserStore) wrap(err error, op, userID, field string) error {
	b := oops.In("userstore").With("operation", op)
	if userID != "" {
		b = b.With("user_id", userID)
	}
	if field != "" {
		b = b.With("field", field)
	}
	return b.Wrapf(err, "userstore %s", op)
}

// guardKey locks on the normalized user name, the same key the unique index
// enforces.
func (s *UserStore) guardKey(u *domain.User) string {
	if u.NormalizedUserName != "" {
		return u.NormalizedUserName
	}
	return s.normalizer.NormalizeName(u.UserName)
}

// begin rejects cancelled contexts and nil users before any work happens.
func begin(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u == nil {
		return domain.ErrNilUser
	}
	return nil
}
