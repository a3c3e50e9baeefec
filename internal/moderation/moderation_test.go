package moderation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	mem := store.NewMemory()
	s := mem.Store()
	return NewEngine(s, zerolog.Nop()), s
}

func seedPost(t *testing.T, s store.Store, id, author string) {
	t.Helper()
	now := time.Now()
	err := s.Posts.Create(context.Background(), &models.Post{
		ID:        id,
		AnonID:    author,
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

func seedIntel(t *testing.T, s store.Store, id, author string) {
	t.Helper()
	p, err := models.NewIntelPost(models.IntelTypeDeal, &models.DealMeta{ValidityPreset: models.Preset48H}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.ID = id
	p.AnonID = author
	p.Content = "info"
	p.City = "Jakarta"
	p.CreatedAt = time.Now()
	p.ExpiresAt = time.Now().Add(48 * time.Hour)
	if err := s.Intel.Create(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
}

func TestReportValidation(t *testing.T) {
	eng, s := newTestEngine(t)
	seedPost(t, s, "p1", "author")
	ctx := context.Background()

	if _, err := eng.SubmitReport(ctx, "p1", models.TargetPost, "author", models.ReasonSpam); err != models.ErrSelfReport {
		t.Fatalf("self report: err = %v, want %v", err, models.ErrSelfReport)
	}
	if _, err := eng.SubmitReport(ctx, "p1", models.TargetPost, "r1", "boring"); err != models.ErrInvalidReason {
		t.Fatalf("bad reason: err = %v, want %v", err, models.ErrInvalidReason)
	}
	if _, err := eng.SubmitReport(ctx, "p1", "COMMENT", "r1", models.ReasonSpam); err != models.ErrInvalidTargetType {
		t.Fatalf("bad target type: err = %v, want %v", err, models.ErrInvalidTargetType)
	}
	if _, err := eng.SubmitReport(ctx, "missing", models.TargetPost, "r1", models.ReasonSpam); err != models.ErrNotFound {
		t.Fatalf("missing target: err = %v, want %v", err, models.ErrNotFound)
	}
}

func TestReportedPostDeleted(t *testing.T) {
	eng, s := newTestEngine(t)
	seedPost(t, s, "p1", "author")
	ctx := context.Background()

	res, err := eng.SubmitReport(ctx, "p1", models.TargetPost, "r1", models.ReasonHarmful)
	if err != nil {
		t.Fatal(err)
	}
	if res.Duplicate {
		t.Fatal("first report flagged duplicate")
	}
	if _, err := s.Posts.GetByID(ctx, "p1"); err != models.ErrNotFound {
		t.Fatalf("post after report: err = %v, want %v", err, models.ErrNotFound)
	}
	// The warning still landed on the author.
	rec, err := s.Bans.Get(ctx, "author")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ReportCount != 1 {
		t.Fatalf("report_count = %d, want 1", rec.ReportCount)
	}
}

func TestDuplicateReportCountedOnce(t *testing.T) {
	eng, s := newTestEngine(t)
	seedIntel(t, s, "i1", "author")
	ctx := context.Background()

	if _, err := eng.SubmitReport(ctx, "i1", models.TargetIntel, "r1", models.ReasonSpam); err != nil {
		t.Fatal(err)
	}
	res, err := eng.SubmitReport(ctx, "i1", models.TargetIntel, "r1", models.ReasonHoax)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Duplicate {
		t.Fatal("repeat report not flagged duplicate")
	}
	rec, err := s.Bans.Get(ctx, "author")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ReportCount != 1 {
		t.Fatalf("report_count = %d, want 1", rec.ReportCount)
	}
	p, err := s.Intel.GetByID(ctx, "i1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Metrics.Reports != 1 {
		t.Fatalf("reports counter = %d, want 1", p.Metrics.Reports)
	}
}

func TestIntelHiddenAtThreshold(t *testing.T) {
	eng, s := newTestEngine(t)
	seedIntel(t, s, "i1", "author")
	ctx := context.Background()

	for i := 0; i < models.IntelHideThreshold; i++ {
		reporter := fmt.Sprintf("r%d", i)
		if _, err := eng.SubmitReport(ctx, "i1", models.TargetIntel, reporter, models.ReasonSpam); err != nil {
			t.Fatal(err)
		}
	}
	p, err := s.Intel.GetByID(ctx, "i1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.IntelStatusHidden {
		t.Fatalf("status = %s, want %s", p.Status, models.IntelStatusHidden)
	}
	if p.Metrics.Reports != models.IntelHideThreshold {
		t.Fatalf("reports = %d, want %d", p.Metrics.Reports, models.IntelHideThreshold)
	}
}

func TestBanAtThreshold(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()

	// Reports spread across the author's items all count toward the same
	// per-author threshold.
	for i := 0; i < models.BanThreshold; i++ {
		id := fmt.Sprintf("i%d", i)
		seedIntel(t, s, id, "author")
		reporter := fmt.Sprintf("r%d", i)

		banned, err := s.Bans.IsBanned(ctx, "author")
		if err != nil {
			t.Fatal(err)
		}
		if banned {
			t.Fatalf("banned after %d reports, threshold is %d", i, models.BanThreshold)
		}
		if _, err := eng.SubmitReport(ctx, id, models.TargetIntel, reporter, models.ReasonSpam); err != nil {
			t.Fatal(err)
		}
	}

	rec, err := s.Bans.Get(ctx, "author")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.IsBanned {
		t.Fatalf("not banned at %d reports", models.BanThreshold)
	}
	if rec.BannedAt == nil {
		t.Fatal("banned_at not set")
	}
	if len(rec.Warnings) != models.BanThreshold {
		t.Fatalf("len(warnings) = %d, want %d", len(rec.Warnings), models.BanThreshold)
	}

	// The flag and timestamp are terminal.
	bannedAt := *rec.BannedAt
	seedIntel(t, s, "extra", "author")
	if _, err := eng.SubmitReport(ctx, "extra", models.TargetIntel, "r-extra", models.ReasonSpam); err != nil {
		t.Fatal(err)
	}
	rec, err = s.Bans.Get(ctx, "author")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.IsBanned || !rec.BannedAt.Equal(bannedAt) {
		t.Fatalf("ban state changed after further reports: %+v", rec)
	}
	if rec.ReportCount != models.BanThreshold+1 {
		t.Fatalf("report_count = %d, want %d", rec.ReportCount, models.BanThreshold+1)
	}
}
