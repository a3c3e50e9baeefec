// Package moderation turns user reports into enforcement: per-author
// escalation toward a ban, hard deletion of reported confessions and
// hiding of repeatedly reported intel.
package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

type Engine struct {
	posts   store.PostStore
	intel   store.IntelStore
	reports store.ReportStore
	bans    store.BanStore

	logger zerolog.Logger
	now    func() time.Time
}

func NewEngine(s store.Store, logger zerolog.Logger) *Engine {
	return &Engine{
		posts:   s.Posts,
		intel:   s.Intel,
		reports: s.Reports,
		bans:    s.Bans,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the engine clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Result is what the reporter learns: only that the report was taken, or
// that this reporter had already been counted. Enforcement outcomes are
// never disclosed.
type Result struct {
	Duplicate bool
}

// SubmitReport records a report and applies enforcement. A repeat report
// by the same reporter on the same target is acknowledged but changes
// nothing. Each accepted report adds one warning to the author; the ban
// lands when distinct reporters across the author's content reach the
// threshold. Target enforcement differs by family: a reported confession
// is deleted outright, a reported intel post is hidden once its own
// report counter reaches the hide threshold.
func (e *Engine) SubmitReport(ctx context.Context, targetID string, targetType models.TargetType, reportedBy string, reason models.ReportReason) (Result, error) {
	if targetID == "" || reportedBy == "" {
		return Result{}, models.ErrMissingFields
	}
	if !models.ValidReason(reason) {
		return Result{}, models.ErrInvalidReason
	}
	if targetType != models.TargetPost && targetType != models.TargetIntel {
		return Result{}, models.ErrInvalidTargetType
	}

	// Dedup first: a reported confession is deleted outright, so a repeat
	// report must be acknowledged before target resolution can 404.
	exists, err := e.reports.Exists(ctx, targetID, reportedBy)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return Result{Duplicate: true}, nil
	}

	var author string
	switch targetType {
	case models.TargetPost:
		p, err := e.posts.GetByID(ctx, targetID)
		if err != nil {
			return Result{}, err
		}
		author = p.AnonID
	case models.TargetIntel:
		p, err := e.intel.GetByID(ctx, targetID)
		if err != nil {
			return Result{}, err
		}
		author = p.AnonID
	}
	if author == reportedBy {
		return Result{}, models.ErrSelfReport
	}

	err = e.reports.Create(ctx, &models.Report{
		ID:           uuid.NewString(),
		TargetID:     targetID,
		TargetType:   targetType,
		ReportedBy:   reportedBy,
		ReportedUser: author,
		Reason:       reason,
		CreatedAt:    e.now(),
	})
	if err == models.ErrDuplicate {
		// Lost the race against a concurrent identical report.
		return Result{Duplicate: true}, nil
	}
	if err != nil {
		return Result{}, err
	}

	rec, err := e.bans.AddWarning(ctx, author, models.Warning{
		Reason:     reason,
		Timestamp:  e.now(),
		TargetType: targetType,
	}, models.BanThreshold)
	if err != nil {
		return Result{}, err
	}
	if rec.IsBanned {
		e.logger.Info().
			Str("anonId", author).
			Int("reportCount", rec.ReportCount).
			Msg("identity banned")
	}

	if err := e.enforce(ctx, targetID, targetType); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

func (e *Engine) enforce(ctx context.Context, targetID string, targetType models.TargetType) error {
	switch targetType {
	case models.TargetPost:
		err := e.posts.Delete(ctx, targetID)
		if err == models.ErrNotFound {
			// Already gone, which is the state we wanted.
			return nil
		}
		return err
	case models.TargetIntel:
		p, err := e.intel.IncrMetric(ctx, targetID, store.MetricReports, 1)
		if err == models.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if p.Metrics.Reports >= models.IntelHideThreshold && p.Status == models.IntelStatusActive {
			e.logger.Info().Str("intelId", targetID).Msg("intel hidden after repeated reports")
			return e.intel.SetStatus(ctx, targetID, models.IntelStatusHidden)
		}
	}
	return nil
}
