package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user collection
// ---------------------------------------------------------------------------

// memCollection keeps documents as encoded BSON so field writes behave like
// the real store: a field-set touches one key, everything else is left as is.
type memCollection struct {
	mu     sync.Mutex
	docs   map[string]bson.Raw
	order  []string
	writes []string          // "op:path" per write, in order
	failOn map[string]error // op -> error returned instead of executing
}

func newMemCollection() *memCollection {
	return &memCollection{
		docs:   make(map[string]bson.Raw),
		failOn: make(map[string]error),
	}
}

func (m *memCollection) InsertOne(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["insert"]; err != nil {
		return err
	}
	if _, ok := m.docs[u.ID]; ok {
		return domain.ErrUserExists
	}
	// Mirrors the unique index on normalized_user_name.
	for _, raw := range m.docs {
		if name, ok := raw.Lookup(domain.FieldNormalizedUserName).StringValueOK(); ok && name != "" && name == u.NormalizedUserName {
			return domain.ErrUserExists
		}
	}
	raw, err := bson.Marshal(u)
	if err != nil {
		return err
	}
	m.docs[u.ID] = raw
	m.order = append(m.order, u.ID)
	m.writes = append(m.writes, "insert:")
	return nil
}

func (m *memCollection) DeleteOne(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["delete"]; err != nil {
		return false, err
	}
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	m.order = lo.Without(m.order, id)
	m.writes = append(m.writes, "delete:")
	return true, nil
}

func (m *memCollection) ReplaceOne(_ context.Context, id string, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["replace"]; err != nil {
		return err
	}
	raw, err := bson.Marshal(u)
	if err != nil {
		return err
	}
	if _, ok := m.docs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.docs[id] = raw
	m.writes = append(m.writes, "replace:")
	return nil
}

func (m *memCollection) FindOne(_ context.Context, f ports.UserFilter) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["find"]; err != nil {
		return nil, err
	}
	users, err := m.matchLocked(f)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return users[0], nil
}

func (m *memCollection) FindMany(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["find"]; err != nil {
		return nil, err
	}
	return m.matchLocked(f)
}

func (m *memCollection) All(ctx context.Context) ([]*domain.User, error) {
	return m.FindMany(ctx, ports.UserFilter{})
}

func (m *memCollection) UpdateField(_ context.Context, id, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["set"]; err != nil {
		return err
	}
	m.writes = append(m.writes, "set:"+path)
	return m.setLocked(id, map[string]any{path: value})
}

func (m *memCollection) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["set"]; err != nil {
		return err
	}
	keys := lo.Keys(fields)
	sort.Strings(keys)
	m.writes = append(m.writes, "set:"+strings.Join(keys, ","))
	return m.setLocked(id, fields)
}

func (m *memCollection) AddToSet(_ context.Context, id, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["add"]; err != nil {
		return err
	}
	m.writes = append(m.writes, "add:"+path)

	raw, ok := m.docs[id]
	if !ok {
		return nil
	}
	t, data, err := bson.MarshalValue(value)
	if err != nil {
		return err
	}

	arr := bson.A{}
	rv, err := raw.LookupErr(path)
	if err == nil && rv.Type != bson.TypeArray {
		// MongoDB accepts a missing field but rejects null or any scalar.
		return fmt.Errorf("Cannot apply $addToSet to non-array field. Field named '%s' has non-array type %s", path, rv.Type)
	}
	if err == nil {
		vals, err := rv.Array().Values()
		if err != nil {
			return err
		}
		for _, v := range vals {
			if v.Type == t && bytes.Equal(v.Value, data) {
				return nil
			}
			arr = append(arr, v)
		}
	}
	arr = append(arr, bson.RawValue{Type: t, Value: data})
	return m.setLocked(id, map[string]any{path: arr})
}

// setLocked applies a $set to the stored document. Missing documents are
// left alone, like an update that matches nothing.
func (m *memCollection) setLocked(id string, fields map[string]any) error {
	raw, ok := m.docs[id]
	if !ok {
		return nil
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return err
	}
	for path, v := range fields {
		idx := -1
		for i := range d {
			if d[i].Key == path {
				idx = i
				break
			}
		}
		if idx >= 0 {
			d[idx].Value = v
		} else {
			d = append(d, bson.E{Key: path, Value: v})
		}
	}
	out, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	m.docs[id] = out
	return nil
}

func (m *memCollection) matchLocked(f ports.UserFilter) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	for _, id := range m.order {
		var u domain.User
		if err := bson.Unmarshal(m.docs[id], &u); err != nil {
			return nil, err
		}
		if matches(&u, f) {
			users = append(users, &u)
		}
	}
	return users, nil
}

func matches(u *domain.User, f ports.UserFilter) bool {
	switch {
	case f.ID != "" && u.ID != f.ID:
		return false
	case f.UserName != "" && u.UserName != f.UserName:
		return false
	case f.NormalizedUserName != "" && u.NormalizedUserName != f.NormalizedUserName:
		return false
	case f.NormalizedEmail != "" && u.NormalizedEmail != f.NormalizedEmail:
		return false
	case f.RoleID != "" && !lo.Contains(u.Roles, f.RoleID):
		return false
	case f.Claim != nil && !domain.HasClaim(u.Claims, *f.Claim):
		return false
	}
	if f.Login != nil {
		if _, ok := domain.FindLogin(u.Logins, *f.Login); !ok {
			return false
		}
	}
	return true
}

// stored decodes the persisted document, or nil when missing.
func (m *memCollection) stored(t *testing.T, id string) *domain.User {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[id]
	if !ok {
		return nil
	}
	var u domain.User
	if err := bson.Unmarshal(raw, &u); err != nil {
		t.Fatalf("decode stored user: %v", err)
	}
	return &u
}

// fieldType returns the BSON type of path in the persisted document.
func (m *memCollection) fieldType(t *testing.T, id, path string) bsontype.Type {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, err := m.docs[id].LookupErr(path)
	if err != nil {
		t.Fatalf("lookup %s: %v", path, err)
	}
	return rv.Type
}

func (m *memCollection) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *memCollection) writeLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

func (m *memCollection) resetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// ---------------------------------------------------------------------------
// Role finder stub
// ---------------------------------------------------------------------------

type stubRoles struct {
	byName map[string]*domain.Role
	byID   map[string]*domain.Role
}

func newStubRoles(roles ...domain.Role) *stubRoles {
	r := &stubRoles{
		byName: make(map[string]*domain.Role),
		byID:   make(map[string]*domain.Role),
	}
	for i := range roles {
		role := roles[i]
		r.byName[role.NormalizedName] = &role
		r.byID[role.ID] = &role
	}
	return r
}

func (r *stubRoles) FindRoleByName(_ context.Context, normalizedName string) (*domain.Role, error) {
	role, ok := r.byName[normalizedName]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoles) FindRoleByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Create guard stub
// ---------------------------------------------------------------------------

type stubGuard struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (g *stubGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	if g.held[key] {
		return nil, domain.ErrConcurrencyFailure
	}
	if g.held == nil {
		g.held = make(map[string]bool)
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.held, key)
	}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*UserStore, *memCollection) {
	t.Helper()
	col := newMemCollection()
	roles := newStubRoles(
		domain.Role{ID: "r-admin", Name: "admin", NormalizedName: "ADMIN"},
		domain.Role{ID: "r-editor", Name: "editor", NormalizedName: "EDITOR"},
	)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewUserStore(col, roles, UpperInvariantNormalizer{}, zerolog.Nop(), opts...), col
}

// mustCreate persists a fresh user named name and returns the caller's copy.
func mustCreate(t *testing.T, s *UserStore, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		UserName:           name,
		NormalizedUserName: UpperInvariantNormalizer{}.NormalizeName(name),
		Email:              name + "@example.com",
	}
	res, err := s.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	if !res.Succeeded {
		t.Fatalf("Create(%s) failed: %+v", name, res.Errors)
	}
	return u
}
