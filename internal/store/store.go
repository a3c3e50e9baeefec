// Package store is the abstract repository behind every component. Reads
// always exclude logically expired records: physical reclamation is a
// best-effort background concern, never a correctness dependency.
package store

import (
	"context"
	"time"

	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
)

// GeoScope restricts a query to a radius around an origin. When present it
// is the primary filter stage, applied before any other predicate, both to
// exploit spatial indexing and because the distance it computes feeds the
// bucket annotation downstream.
type GeoScope struct {
	Origin    geo.Point
	MaxMeters float64
}

type SortMode string

const (
	SortRecency SortMode = "recency"
	SortPopular SortMode = "popular"
)

// PostQuery describes one read over confession posts. The staging order is
// fixed by the implementations: geo scope first, then field equality, then
// sort and limit. Expired and hidden records never come back.
type PostQuery struct {
	Geo         *GeoScope
	City        string
	Institution string
	Topic       string
	Sort        SortMode
	Limit       int
}

// IntelQuery describes one read over intel posts. Same staging rules as
// PostQuery. An empty Type means both variants.
type IntelQuery struct {
	Geo   *GeoScope
	City  string
	Type  models.IntelType
	Limit int
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	// GetByID applies logical expiry but no status filter, so moderation
	// can still resolve a hidden target. Returns models.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// ListByAuthor returns the author's live posts, newest first. Seed
	// filler never shows up here.
	ListByAuthor(ctx context.Context, anonID string) ([]*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type IntelStore interface {
	Create(ctx context.Context, p *models.IntelPost) error
	GetByID(ctx context.Context, id string) (*models.IntelPost, error)
	List(ctx context.Context, q IntelQuery) ([]*models.IntelPost, error)
	// LatestByAuthor returns the newest intel of one variant by one
	// identity created after since, or models.ErrNotFound. The rate
	// limiter derives its whole decision from this read.
	LatestByAuthor(ctx context.Context, anonID string, typ models.IntelType, since time.Time) (*models.IntelPost, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	// IncrMetric atomically adds delta to one named counter (floored at
	// zero) and returns the updated post.
	IncrMetric(ctx context.Context, id string, metric Metric, delta int) (*models.IntelPost, error)
	SetStatus(ctx context.Context, id string, status models.IntelStatus) error
}

// Metric names the intel counters that IncrMetric may touch.
type Metric string

const (
	MetricSaves           Metric = "saves"
	MetricDirectionClicks Metric = "direction_clicks"
	MetricAck             Metric = "ack"
	MetricUpdates         Metric = "updates"
	MetricReports         Metric = "reports"
)

type LikeStore interface {
	// Toggle flips the (post, identity) engagement edge and keeps the
	// cached counter on the post in sync inside the same unit of work.
	// Returns the updated count and the resulting like state.
	Toggle(ctx context.Context, postID, anonID string) (likes int, hasLiked bool, err error)
	// LikedSet reports which of the given posts the identity has liked.
	LikedSet(ctx context.Context, anonID string, postIDs []string) (map[string]bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	// ListByPost returns live comments oldest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
}

type ReportStore interface {
	// Create persists a report; the (target, reporter) pair is unique at
	// the storage level and a violation surfaces as models.ErrDuplicate.
	Create(ctx context.Context, r *models.Report) error
	Exists(ctx context.Context, targetID, reportedBy string) (bool, error)
}

type BanStore interface {
	// Get returns models.ErrNotFound for identities never reported on.
	Get(ctx context.Context, anonID string) (*models.BanRecord, error)
	IsBanned(ctx context.Context, anonID string) (bool, error)
	// AddWarning upserts the record, increments the counter, appends the
	// warning and, inside the same unit of work, sets the ban flag on the
	// first crossing of banAt. The flag is never re-evaluated afterwards.
	AddWarning(ctx context.Context, anonID string, w models.Warning, banAt int) (*models.BanRecord, error)
}

// Store bundles the repositories a service layer needs.
type Store struct {
	Posts    PostStore
	Intel    IntelStore
	Likes    LikeStore
	Comments CommentStore
	Reports  ReportStore
	Bans     BanStore
}
