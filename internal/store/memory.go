package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
)

// Memory is a mutex-guarded in-memory Store used by tests and local
// development. It mirrors the Postgres implementation's semantics:
// uniqueness of likes and reports, counter/edge mutation in one critical
// section, and logical expiry on every read.
type Memory struct {
	mu  sync.Mutex
	now func() time.Time

	posts    map[string]*models.Post
	intel    map[string]*models.IntelPost
	likes    map[string]map[string]time.Time
	comments map[string][]*models.Comment
	reports  map[string]*models.Report
	bans     map[string]*models.BanRecord
}

func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		posts:    map[string]*models.Post{},
		intel:    map[string]*models.IntelPost{},
		likes:    map[string]map[string]time.Time{},
		comments: map[string][]*models.Comment{},
		reports:  map[string]*models.Report{},
		bans:     map[string]*models.BanRecord{},
	}
}

// SetClock swaps the time source, letting tests move through expiry and
// cooldown windows deterministically.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) Store() Store {
	return Store{
		Posts:    memPosts{m},
		Intel:    memIntel{m},
		Likes:    memLikes{m},
		Comments: memComments{m},
		Reports:  memReports{m},
		Bans:     memBans{m},
	}
}

func withinScope(scope *GeoScope, lat, long *float64) bool {
	if lat == nil || long == nil {
		return false
	}
	return geo.Distance(scope.Origin, geo.Point{Lat: *lat, Long: *long}) <= scope.MaxMeters
}

// --- PostStore

type memPosts struct{ m *Memory }

func (s memPosts) Create(ctx context.Context, p *models.Post) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *p
	s.m.posts[p.ID] = &cp
	return nil
}

func (s memPosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.posts[id]
	if !ok || p.Expired(s.m.now()) {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memPosts) ListByAuthor(ctx context.Context, anonID string) ([]*models.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.now()
	var out []*models.Post
	for _, p := range s.m.posts {
		if p.AnonID != anonID || p.IsSeed || p.Expired(now) || p.Status != models.PostStatusActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memPosts) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.now()
	var out []*models.Post
	for _, p := range s.m.posts {
		if p.Expired(now) || p.Status != models.PostStatusActive {
			continue
		}
		// Geo scope is the primary stage; other predicates follow.
		if q.Geo != nil && !withinScope(q.Geo, p.Lat, p.Long) {
			continue
		}
		if q.Geo == nil && q.City != "" && p.City != q.City {
			continue
		}
		if q.Institution != "" && (p.Institution == nil || *p.Institution != q.Institution) {
			continue
		}
		if q.Topic != "" && (p.Topic == nil || *p.Topic != q.Topic) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	if q.Sort == SortPopular {
		sort.Slice(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s memPosts) UpdateContent(ctx context.Context, id, content string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.posts[id]
	if !ok || p.Expired(s.m.now()) {
		return models.ErrNotFound
	}
	p.Content = content
	return nil
}

func (s memPosts) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.m.posts, id)
	delete(s.m.likes, id)
	delete(s.m.comments, id)
	return nil
}

// --- IntelStore

type memIntel struct{ m *Memory }

func (s memIntel) Create(ctx context.Context, p *models.IntelPost) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *p
	s.m.intel[p.ID] = &cp
	return nil
}

func (s memIntel) GetByID(ctx context.Context, id string) (*models.IntelPost, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.intel[id]
	if !ok || p.Expired(s.m.now()) {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memIntel) List(ctx context.Context, q IntelQuery) ([]*models.IntelPost, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.now()
	var out []*models.IntelPost
	for _, p := range s.m.intel {
		if p.Expired(now) || p.Status != models.IntelStatusActive {
			continue
		}
		if q.Geo != nil && !withinScope(q.Geo, p.Lat, p.Long) {
			continue
		}
		if q.Geo == nil && q.City != "" && p.City != q.City {
			continue
		}
		if q.Type != "" && p.Type != q.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s memIntel) LatestByAuthor(ctx context.Context, anonID string, typ models.IntelType, since time.Time) (*models.IntelPost, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var latest *models.IntelPost
	for _, p := range s.m.intel {
		if p.AnonID != anonID || p.Type != typ || !p.CreatedAt.After(since) {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s memIntel) UpdateContent(ctx context.Context, id, content string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.intel[id]
	if !ok || p.Expired(s.m.now()) {
		return models.ErrNotFound
	}
	p.Content = content
	return nil
}

func (s memIntel) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.intel[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.m.intel, id)
	return nil
}

func (s memIntel) IncrMetric(ctx context.Context, id string, metric Metric, delta int) (*models.IntelPost, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.intel[id]
	if !ok || p.Expired(s.m.now()) {
		return nil, models.ErrNotFound
	}
	counter := map[Metric]*int{
		MetricSaves:           &p.Metrics.Saves,
		MetricDirectionClicks: &p.Metrics.DirectionClicks,
		MetricAck:             &p.Metrics.Ack,
		MetricUpdates:         &p.Metrics.Updates,
		MetricReports:         &p.Metrics.Reports,
	}[metric]
	if counter == nil {
		return nil, models.ErrUnknownAction
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
	cp := *p
	return &cp, nil
}

func (s memIntel) SetStatus(ctx context.Context, id string, status models.IntelStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.intel[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	return nil
}

// --- LikeStore

type memLikes struct{ m *Memory }

func (s memLikes) Toggle(ctx context.Context, postID, anonID string) (int, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.posts[postID]
	if !ok || p.Expired(s.m.now()) {
		return 0, false, models.ErrNotFound
	}
	edges := s.m.likes[postID]
	if edges == nil {
		edges = map[string]time.Time{}
		s.m.likes[postID] = edges
	}
	if _, liked := edges[anonID]; liked {
		delete(edges, anonID)
		if p.Likes > 0 {
			p.Likes--
		}
		return p.Likes, false, nil
	}
	edges[anonID] = s.m.now()
	p.Likes++
	return p.Likes, true, nil
}

func (s memLikes) LikedSet(ctx context.Context, anonID string, postIDs []string) (map[string]bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := s.m.likes[id][anonID]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// --- CommentStore

type memComments struct{ m *Memory }

func (s memComments) Create(ctx context.Context, c *models.Comment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *c
	s.m.comments[c.PostID] = append(s.m.comments[c.PostID], &cp)
	return nil
}

func (s memComments) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.now()
	var out []*models.Comment
	for _, c := range s.m.comments[postID] {
		if !c.ExpiresAt.After(now) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- ReportStore

type memReports struct{ m *Memory }

func reportKey(targetID, reportedBy string) string { return targetID + "|" + reportedBy }

func (s memReports) Create(ctx context.Context, r *models.Report) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := reportKey(r.TargetID, r.ReportedBy)
	if _, ok := s.m.reports[key]; ok {
		return models.ErrDuplicate
	}
	cp := *r
	s.m.reports[key] = &cp
	return nil
}

func (s memReports) Exists(ctx context.Context, targetID, reportedBy string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	_, ok := s.m.reports[reportKey(targetID, reportedBy)]
	return ok, nil
}

// --- BanStore

type memBans struct{ m *Memory }

func (s memBans) Get(ctx context.Context, anonID string) (*models.BanRecord, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	rec, ok := s.m.bans[anonID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *rec
	cp.Warnings = append([]models.Warning(nil), rec.Warnings...)
	return &cp, nil
}

func (s memBans) IsBanned(ctx context.Context, anonID string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	rec, ok := s.m.bans[anonID]
	return ok && rec.IsBanned, nil
}

func (s memBans) AddWarning(ctx context.Context, anonID string, w models.Warning, banAt int) (*models.BanRecord, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	rec, ok := s.m.bans[anonID]
	if !ok {
		rec = &models.BanRecord{AnonID: anonID, CreatedAt: s.m.now()}
		s.m.bans[anonID] = rec
	}
	rec.ReportCount++
	rec.Warnings = append(rec.Warnings, w)
	if !rec.IsBanned && rec.ReportCount >= banAt {
		rec.IsBanned = true
		at := s.m.now()
		rec.BannedAt = &at
	}
	cp := *rec
	cp.Warnings = append([]models.Warning(nil), rec.Warnings...)
	return &cp, nil
}
