package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	rplatform "coachmarket-backend/internal/platform/redis"
)

// LoginThrottle counts failed logins for emails that have no account, so
// their responses keep the same countdown shape as real accounts. Keys
// expire instead of blocking forever; a real account's counter lives in
// Postgres.
type LoginThrottle struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewLoginThrottle(client *rplatform.Client, ttl time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, ttl: ttl}
}

// key hashes the email so unknown addresses are not stored verbatim.
func (t *LoginThrottle) key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("login:miss:%s", hex.EncodeToString(sum[:8]))
}

// Fail increments the counter for the email and returns the new value.
func (t *LoginThrottle) Fail(ctx context.Context, email string) (int, error) {
	key := t.key(email)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		t.client.Expire(ctx, key, t.ttl)
	}
	return int(n), nil
}
