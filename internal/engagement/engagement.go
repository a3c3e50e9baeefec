// Package engagement handles the two interaction families: the durable,
// idempotent like toggle on confessions and the fire-and-forget counters
// on intel posts.
package engagement

import (
	"context"

	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

// Action names an intel interaction as the client sends it.
type Action string

const (
	ActionSave           Action = "save"
	ActionUnsave         Action = "unsave"
	ActionAck            Action = "ack"
	ActionDirectionClick Action = "direction_click"
	ActionUpdateClick    Action = "update_click"
)

// actionEffects maps each action onto its counter and direction. Unsave is
// the only decrement; the store floors every counter at zero.
var actionEffects = map[Action]struct {
	metric store.Metric
	delta  int
}{
	ActionSave:           {store.MetricSaves, 1},
	ActionUnsave:         {store.MetricSaves, -1},
	ActionAck:            {store.MetricAck, 1},
	ActionDirectionClick: {store.MetricDirectionClicks, 1},
	ActionUpdateClick:    {store.MetricUpdates, 1},
}

type Service struct {
	likes store.LikeStore
	intel store.IntelStore
}

func NewService(s store.Store) *Service {
	return &Service{likes: s.Likes, intel: s.Intel}
}

// ToggleLike flips the caller's like on a post. Repeating the call undoes
// it; the returned state is always the post-toggle truth.
func (s *Service) ToggleLike(ctx context.Context, postID, anonID string) (likes int, hasLiked bool, err error) {
	if anonID == "" {
		return 0, false, models.ErrMissingFields
	}
	return s.likes.Toggle(ctx, postID, anonID)
}

// IntelAction applies one counter action to an intel post. There is no
// per-identity edge behind these counters: the same client may count
// twice, and that is accepted.
func (s *Service) IntelAction(ctx context.Context, intelID string, action Action) (*models.IntelPost, error) {
	eff, ok := actionEffects[action]
	if !ok {
		return nil, models.ErrUnknownAction
	}
	return s.intel.IncrMetric(ctx, intelID, eff.metric, eff.delta)
}
