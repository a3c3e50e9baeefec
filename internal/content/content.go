// Package content owns the write path for confessions, intel posts and
// comments: validation, the ban gate, the intel rate limit and the edit
// window all live here, in front of the store.
package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/spam"
	"gitlab.com/bisikapp/bisik/internal/store"
)

type Service struct {
	posts    store.PostStore
	intel    store.IntelStore
	comments store.CommentStore
	bans     store.BanStore

	limiter RateLimiter

	// banGatesIntel extends the ban gate to intel creation. Off by
	// default: a banned identity loses confessions but keeps intel.
	banGatesIntel bool

	now func() time.Time
}

func NewService(s store.Store, banGatesIntel bool) *Service {
	return &Service{
		posts:         s.Posts,
		intel:         s.Intel,
		comments:      s.Comments,
		bans:          s.Bans,
		limiter:       RateLimiter{intel: s.Intel},
		banGatesIntel: banGatesIntel,
		now:           time.Now,
	}
}

// SetClock overrides the service clock. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.limiter.now = now
}

// CreatePostInput carries everything a client may say about a new
// confession. Coordinates are optional and never echoed back.
type CreatePostInput struct {
	AnonID      string
	Content     string
	City        string
	Institution *string
	Topic       *string
	Gender      *string
	Occupation  *string
	Lat         *float64
	Long        *float64
}

func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.AnonID == "" || in.Content == "" || in.City == "" {
		return nil, models.ErrMissingFields
	}
	if len(in.Content) > models.MaxPostLen {
		return nil, models.ErrContentTooLong
	}
	banned, err := s.bans.IsBanned(ctx, in.AnonID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.ErrBanned
	}

	now := s.now()
	p := &models.Post{
		ID:          uuid.NewString(),
		AnonID:      in.AnonID,
		Content:     in.Content,
		City:        in.City,
		Institution: in.Institution,
		Topic:       in.Topic,
		Gender:      in.Gender,
		Occupation:  in.Occupation,
		Lat:         in.Lat,
		Long:        in.Long,
		CreatedAt:   now,
		ExpiresAt:   models.PostExpiresAt(now),
		Status:      models.PostStatusActive,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MyPosts returns the caller's own live confessions, newest first.
func (s *Service) MyPosts(ctx context.Context, anonID string) ([]*models.Post, error) {
	return s.posts.ListByAuthor(ctx, anonID)
}

// EditPost replaces the content of the caller's own post. Only allowed
// inside the edit window; afterwards the post is immutable until expiry.
func (s *Service) EditPost(ctx context.Context, id, anonID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrMissingFields
	}
	if len(content) > models.MaxPostLen {
		return nil, models.ErrContentTooLong
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AnonID != anonID {
		return nil, models.ErrNotFound
	}
	if !p.Editable(s.now()) {
		return nil, models.ErrEditWindowExpired
	}
	if err := s.posts.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	p.Content = content
	return p, nil
}

// DeletePost removes the caller's own post. Ownership is checked first so
// a foreign id 404s instead of deleting.
func (s *Service) DeletePost(ctx context.Context, id, anonID string) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AnonID != anonID {
		return models.ErrNotFound
	}
	return s.posts.Delete(ctx, id)
}

// CreateIntelInput carries a new intel post of either variant. Exactly one
// of Deal/HeadsUp must be set and must match Type.
type CreateIntelInput struct {
	AnonID  string
	Type    models.IntelType
	Content string
	City    string
	Area    *string
	Lat     *float64
	Long    *float64
	Deal    *models.DealMeta
	HeadsUp *models.HeadsUpMeta
}

// CreateIntel runs the full intake pipeline: field validation, spam
// heuristics, then the rate limit. Spam is checked before the rate limit
// on purpose: a rejected attempt must not consume the author's slot.
func (s *Service) CreateIntel(ctx context.Context, in CreateIntelInput) (*models.IntelPost, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.AnonID == "" || in.Content == "" || in.City == "" {
		return nil, models.ErrMissingFields
	}
	if len(in.Content) > models.MaxIntelLen {
		return nil, models.ErrContentTooLong
	}
	if spam.Match(in.Content) {
		return nil, models.ErrSpamRejected
	}
	if s.banGatesIntel {
		banned, err := s.bans.IsBanned(ctx, in.AnonID)
		if err != nil {
			return nil, err
		}
		if banned {
			return nil, models.ErrBanned
		}
	}
	if err := s.limiter.Allow(ctx, in.AnonID, in.Type); err != nil {
		return nil, err
	}

	p, err := models.NewIntelPost(in.Type, in.Deal, in.HeadsUp)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.AnonID = in.AnonID
	p.Content = in.Content
	p.City = in.City
	p.Area = in.Area
	p.Lat = in.Lat
	p.Long = in.Long
	p.CreatedAt = now
	var preset models.ValidityPreset
	if in.Deal != nil {
		preset = in.Deal.ValidityPreset
	}
	p.ExpiresAt = models.IntelExpiresAt(in.Type, preset, now)

	if err := s.intel.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EditIntel replaces the content of the caller's own intel post inside the
// edit window. The variant payload and expiry are fixed at creation.
func (s *Service) EditIntel(ctx context.Context, id, anonID, content string) (*models.IntelPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrMissingFields
	}
	if len(content) > models.MaxIntelLen {
		return nil, models.ErrContentTooLong
	}
	if spam.Match(content) {
		return nil, models.ErrSpamRejected
	}
	p, err := s.intel.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AnonID != anonID {
		return nil, models.ErrNotFound
	}
	if !p.Editable(s.now()) {
		return nil, models.ErrEditWindowExpired
	}
	if err := s.intel.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	p.Content = content
	return p, nil
}

func (s *Service) DeleteIntel(ctx context.Context, id, anonID string) error {
	p, err := s.intel.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AnonID != anonID {
		return models.ErrNotFound
	}
	return s.intel.Delete(ctx, id)
}

// CreateComment attaches a reply to a live post. The comment inherits the
// post's expiry so it can never outlive its parent.
func (s *Service) CreateComment(ctx context.Context, postID, anonID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if anonID == "" || content == "" {
		return nil, models.ErrMissingFields
	}
	if len(content) > models.MaxCommentLen {
		return nil, models.ErrContentTooLong
	}
	banned, err := s.bans.IsBanned(ctx, anonID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.ErrBanned
	}
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    p.ID,
		AnonID:    anonID,
		Content:   content,
		CreatedAt: s.now(),
		ExpiresAt: p.ExpiresAt,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}
