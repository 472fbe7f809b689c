package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const defaultLockTTL = 10 * time.Second

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CreateGuard serialises user creation per user name across store
// instances using a short-lived Redis lock.
// Key format: identity:create:<user_name>
type CreateGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.CreateGuard = (*CreateGuard)(nil)

// NewCreateGuard wraps client. A non-positive ttl falls back to defaultLockTTL.
func NewCreateGuard(client *redis.Client, ttl time.Duration, log zerolog.Logger) *CreateGuard {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &CreateGuard{client: client, ttl: ttl, log: log}
}

// Acquire takes the lock for key. It returns domain.ErrConcurrencyFailure when
// another holder owns it.
func (g *CreateGuard) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := g.key(key)
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, lockKey, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("create guard acquire: %w", err)
	}
	if !ok {
		return nil, domain.ErrConcurrencyFailure
	}

	release := func() {
		// The caller's ctx may already be done; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{lockKey}, token).Err(); err != nil {
			g.log.Warn().Err(err).Str("key", lockKey).Msg("create guard release failed")
		}
	}
	return release, nil
}

func (g *CreateGuard) key(normalizedUserName string) string {
	return fmt.Sprintf("identity:create:%s", normalizedUserName)
}
