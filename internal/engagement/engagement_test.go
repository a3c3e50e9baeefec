package engagement

import (
	"context"
	"testing"
	"time"

	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	mem := store.NewMemory()
	s := mem.Store()
	return NewService(s), s
}

func seedPost(t *testing.T, s store.Store, id string) {
	t.Helper()
	now := time.Now()
	err := s.Posts.Create(context.Background(), &models.Post{
		ID:        id,
		AnonID:    "author",
		Content:   "isi",
		City:      "Jakarta",
		CreatedAt: now,
		ExpiresAt: now.Add(models.PostTTL),
		Status:    models.PostStatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func seedIntel(t *testing.T, s store.Store, id string) {
	t.Helper()
	p, err := models.NewIntelPost(models.IntelTypeDeal, &models.DealMeta{ValidityPreset: models.Preset48H}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.ID = id
	p.AnonID = "author"
	p.Content = "info"
	p.City = "Jakarta"
	p.CreatedAt = time.Now()
	p.ExpiresAt = time.Now().Add(48 * time.Hour)
	if err := s.Intel.Create(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	svc, s := newTestService(t)
	seedPost(t, s, "p1")
	ctx := context.Background()

	likes, hasLiked, err := svc.ToggleLike(ctx, "p1", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if likes != 1 || !hasLiked {
		t.Fatalf("first toggle = (%d, %v), want (1, true)", likes, hasLiked)
	}

	likes, hasLiked, err = svc.ToggleLike(ctx, "p1", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if likes != 0 || hasLiked {
		t.Fatalf("second toggle = (%d, %v), want (0, false)", likes, hasLiked)
	}

	// Distinct identities count separately.
	if _, _, err := svc.ToggleLike(ctx, "p1", "v1"); err != nil {
		t.Fatal(err)
	}
	likes, _, err = svc.ToggleLike(ctx, "p1", "v2")
	if err != nil {
		t.Fatal(err)
	}
	if likes != 2 {
		t.Fatalf("likes = %d, want 2", likes)
	}
}

func TestToggleLikeValidation(t *testing.T) {
	svc, s := newTestService(t)
	seedPost(t, s, "p1")
	ctx := context.Background()

	if _, _, err := svc.ToggleLike(ctx, "p1", ""); err != models.ErrMissingFields {
		t.Fatalf("empty identity: err = %v, want %v", err, models.ErrMissingFields)
	}
	if _, _, err := svc.ToggleLike(ctx, "missing", "v1"); err != models.ErrNotFound {
		t.Fatalf("missing post: err = %v, want %v", err, models.ErrNotFound)
	}
}

func TestIntelActions(t *testing.T) {
	svc, s := newTestService(t)
	seedIntel(t, s, "i1")
	ctx := context.Background()

	p, err := svc.IntelAction(ctx, "i1", ActionSave)
	if err != nil {
		t.Fatal(err)
	}
	if p.Metrics.Saves != 1 {
		t.Fatalf("saves = %d, want 1", p.Metrics.Saves)
	}

	// Fire-and-forget: a second save counts again.
	p, err = svc.IntelAction(ctx, "i1", ActionSave)
	if err != nil {
		t.Fatal(err)
	}
	if p.Metrics.Saves != 2 {
		t.Fatalf("saves = %d, want 2", p.Metrics.Saves)
	}

	p, err = svc.IntelAction(ctx, "i1", ActionUnsave)
	if err != nil {
		t.Fatal(err)
	}
	if p.Metrics.Saves != 1 {
		t.Fatalf("saves after unsave = %d, want 1", p.Metrics.Saves)
	}

	// Unsave floors at zero instead of going negative.
	for i := 0; i < 3; i++ {
		if p, err = svc.IntelAction(ctx, "i1", ActionUnsave); err != nil {
			t.Fatal(err)
		}
	}
	if p.Metrics.Saves != 0 {
		t.Fatalf("saves floored = %d, want 0", p.Metrics.Saves)
	}

	if _, err := svc.IntelAction(ctx, "i1", Action("boost")); err != models.ErrUnknownAction {
		t.Fatalf("unknown action: err = %v, want %v", err, models.ErrUnknownAction)
	}
}
