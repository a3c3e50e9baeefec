package content

import (
	"context"
	"strings"
	"testing"
	"time"

	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

func newTestService(t *testing.T, banGatesIntel bool) (*Service, *store.Memory, *time.Time) {
	t.Helper()
	mem := store.NewMemory()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	mem.SetClock(clock)
	svc := NewService(mem.Store(), banGatesIntel)
	svc.SetClock(clock)
	return svc, mem, &now
}

func dealInput(anonID, content string) CreateIntelInput {
	return CreateIntelInput{
		AnonID:  anonID,
		Type:    models.IntelTypeDeal,
		Content: content,
		City:    "Jakarta",
		Deal:    &models.DealMeta{ValidityPreset: models.PresetToday},
	}
}

func headsUpInput(anonID, content string) CreateIntelInput {
	return CreateIntelInput{
		AnonID:  anonID,
		Type:    models.IntelTypeHeadsUp,
		Content: content,
		City:    "Jakarta",
		HeadsUp: &models.HeadsUpMeta{HeadsUpType: "RAME"},
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta"})
	if err != models.ErrMissingFields {
		t.Fatalf("empty content: err = %v, want %v", err, models.ErrMissingFields)
	}
	_, err = svc.CreatePost(ctx, CreatePostInput{
		AnonID: "a1", City: "Jakarta", Content: strings.Repeat("x", models.MaxPostLen+1),
	})
	if err != models.ErrContentTooLong {
		t.Fatalf("long content: err = %v, want %v", err, models.ErrContentTooLong)
	}

	p, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta", Content: "curhat dikit"})
	if err != nil {
		t.Fatal(err)
	}
	if want := p.CreatedAt.Add(48 * time.Hour); !p.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", p.ExpiresAt, want)
	}
}

func TestCreatePostBanGate(t *testing.T) {
	svc, mem, _ := newTestService(t, false)
	ctx := context.Background()

	s := mem.Store()
	for i := 0; i < models.BanThreshold; i++ {
		if _, err := s.Bans.AddWarning(ctx, "banned", models.Warning{Reason: models.ReasonSpam}, models.BanThreshold); err != nil {
			t.Fatal(err)
		}
	}

	_, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "banned", City: "Jakarta", Content: "halo"})
	if err != models.ErrBanned {
		t.Fatalf("err = %v, want %v", err, models.ErrBanned)
	}
	// Intel stays open unless the gate is extended to it.
	if _, err := svc.CreateIntel(ctx, dealInput("banned", "Diskon kopi sore ini")); err != nil {
		t.Fatalf("intel by banned identity: err = %v, want nil", err)
	}

	gated, mem2, _ := newTestService(t, true)
	s2 := mem2.Store()
	for i := 0; i < models.BanThreshold; i++ {
		if _, err := s2.Bans.AddWarning(ctx, "banned", models.Warning{Reason: models.ReasonSpam}, models.BanThreshold); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := gated.CreateIntel(ctx, dealInput("banned", "Diskon kopi sore ini")); err != models.ErrBanned {
		t.Fatalf("gated intel: err = %v, want %v", err, models.ErrBanned)
	}
}

func TestCreateIntelRateLimit(t *testing.T) {
	svc, _, now := newTestService(t, false)
	ctx := context.Background()

	if _, err := svc.CreateIntel(ctx, headsUpInput("a1", "Rame banget di sini")); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(9 * time.Minute)
	if _, err := svc.CreateIntel(ctx, headsUpInput("a1", "Masih rame")); err != models.ErrRateLimited {
		t.Fatalf("9min: err = %v, want %v", err, models.ErrRateLimited)
	}
	*now = now.Add(2 * time.Minute)
	if _, err := svc.CreateIntel(ctx, headsUpInput("a1", "Masih rame")); err != nil {
		t.Fatalf("11min: err = %v, want nil", err)
	}

	// Deals have their own, longer window.
	if _, err := svc.CreateIntel(ctx, dealInput("a1", "Diskon kopi sore ini")); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(29 * time.Minute)
	if _, err := svc.CreateIntel(ctx, dealInput("a1", "Diskon teh juga")); err != models.ErrRateLimited {
		t.Fatalf("29min deal: err = %v, want %v", err, models.ErrRateLimited)
	}
	*now = now.Add(2 * time.Minute)
	if _, err := svc.CreateIntel(ctx, dealInput("a1", "Diskon teh juga")); err != nil {
		t.Fatalf("31min deal: err = %v, want nil", err)
	}
}

func TestSpamRejectionDoesNotConsumeRateLimit(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	if _, err := svc.CreateIntel(ctx, dealInput("a1", "Hubungi 08123456789")); err != models.ErrSpamRejected {
		t.Fatalf("spam: err = %v, want %v", err, models.ErrSpamRejected)
	}
	// The rejected attempt must not have started a cooldown.
	if _, err := svc.CreateIntel(ctx, dealInput("a1", "Diskon kopi sore ini")); err != nil {
		t.Fatalf("clean follow-up: err = %v, want nil", err)
	}
}

func TestEditPostWindow(t *testing.T) {
	svc, _, now := newTestService(t, false)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta", Content: "draft pertama"})
	if err != nil {
		t.Fatal(err)
	}

	*now = now.Add(14*time.Minute + 59*time.Second)
	edited, err := svc.EditPost(ctx, p.ID, "a1", "versi kedua")
	if err != nil {
		t.Fatalf("inside window: err = %v, want nil", err)
	}
	if edited.Content != "versi kedua" {
		t.Fatalf("content = %q, want %q", edited.Content, "versi kedua")
	}

	*now = now.Add(2 * time.Second)
	if _, err := svc.EditPost(ctx, p.ID, "a1", "versi ketiga"); err != models.ErrEditWindowExpired {
		t.Fatalf("outside window: err = %v, want %v", err, models.ErrEditWindowExpired)
	}
}

func TestEditAndDeleteRequireOwnership(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta", Content: "rahasia"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.EditPost(ctx, p.ID, "a2", "bukan punyaku"); err != models.ErrNotFound {
		t.Fatalf("edit by stranger: err = %v, want %v", err, models.ErrNotFound)
	}
	if err := svc.DeletePost(ctx, p.ID, "a2"); err != models.ErrNotFound {
		t.Fatalf("delete by stranger: err = %v, want %v", err, models.ErrNotFound)
	}
	if err := svc.DeletePost(ctx, p.ID, "a1"); err != nil {
		t.Fatalf("delete by owner: err = %v, want nil", err)
	}
}

func TestCommentInheritsPostExpiry(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta", Content: "curhat"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := svc.CreateComment(ctx, p.ID, "a2", "semangat ya")
	if err != nil {
		t.Fatal(err)
	}
	if !c.ExpiresAt.Equal(p.ExpiresAt) {
		t.Fatalf("comment expires_at = %v, want %v", c.ExpiresAt, p.ExpiresAt)
	}

	comments, err := svc.ListComments(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 {
		t.Fatalf("len(comments) = %d, want 1", len(comments))
	}
}

func TestExpiredPostInvisible(t *testing.T) {
	svc, _, now := newTestService(t, false)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{AnonID: "a1", City: "Jakarta", Content: "sebentar saja"})
	if err != nil {
		t.Fatal(err)
	}
	*now = now.Add(48 * time.Hour)
	mine, err := svc.MyPosts(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 0 {
		t.Fatalf("len(mine) = %d, want 0", len(mine))
	}
	if _, err := svc.CreateComment(ctx, p.ID, "a2", "telat"); err != models.ErrNotFound {
		t.Fatalf("comment on expired: err = %v, want %v", err, models.ErrNotFound)
	}
}
