package content

import (
	"context"
	"time"

	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

// Per-variant cooldowns between intel posts by the same identity.
const (
	DealCooldown    = 30 * time.Minute
	HeadsUpCooldown = 10 * time.Minute
)

// RateLimiter keeps no state of its own. The decision is derived from the
// store on every call: if the identity has an intel post of the same
// variant newer than the cooldown, the attempt is rejected. Restarting the
// process cannot reset anyone's window.
type RateLimiter struct {
	intel store.IntelStore
	now   func() time.Time
}

func Cooldown(typ models.IntelType) time.Duration {
	if typ == models.IntelTypeDeal {
		return DealCooldown
	}
	return HeadsUpCooldown
}

// Allow returns models.ErrRateLimited when the identity is still inside
// the cooldown for the given variant.
func (r RateLimiter) Allow(ctx context.Context, anonID string, typ models.IntelType) error {
	now := time.Now()
	if r.now != nil {
		now = r.now()
	}
	_, err := r.intel.LatestByAuthor(ctx, anonID, typ, now.Add(-Cooldown(typ)))
	if err == models.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return models.ErrRateLimited
}
