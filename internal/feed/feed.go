// Package feed composes the mixed home timeline: confession posts and
// intel posts queried by proximity, annotated with like state and distance
// buckets, merged and padded with seed filler when a fresh area is empty.
package feed

import (
	"context"
	"sort"
	"time"

	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

// Filter selects which families the feed includes.
type Filter string

const (
	FilterAll        Filter = "ALL"
	FilterConfession Filter = "CONFESSION"
	FilterDeal       Filter = "DEAL"
	FilterHeadsUp    Filter = "HEADSUP"
)

const (
	// DefaultRadiusM is the proximity scope when the viewer sends
	// coordinates but no explicit radius. Matches the widest bucket.
	DefaultRadiusM = 10000
	// intelCap bounds the intel side of the merge independently of the
	// post limit.
	intelCap = 30
)

// PostView is a confession as the viewer sees it: the post itself plus
// the viewer-specific annotations. Raw coordinates never appear here.
type PostView struct {
	models.Post
	HasLiked       bool       `json:"has_liked"`
	DistanceBucket geo.Bucket `json:"distance_bucket"`
	ItemType       Filter     `json:"item_type"`
}

// IntelView is an intel post with its coarse distance label.
type IntelView struct {
	models.IntelPost
	DistanceBucket geo.Bucket `json:"distance_bucket"`
	ItemType       Filter     `json:"item_type"`
}

// Item is one entry of the mixed feed.
type Item interface{ feedItem() }

func (*PostView) feedItem()  {}
func (*IntelView) feedItem() {}

// Request is one feed read. City is the fallback scope when Viewer is
// nil; when Viewer is set the radius scope replaces it entirely.
type Request struct {
	AnonID      string
	City        string
	Viewer      *geo.Point
	RadiusM     float64
	Filter      Filter
	Sort        store.SortMode
	Institution string
	Topic       string
}

type Composer struct {
	posts store.PostStore
	intel store.IntelStore
	likes store.LikeStore

	limit     int
	seedCount int

	now func() time.Time
}

func NewComposer(s store.Store, limit, seedCount int) *Composer {
	if limit <= 0 {
		limit = 15
	}
	return &Composer{
		posts:     s.Posts,
		intel:     s.Intel,
		likes:     s.Likes,
		limit:     limit,
		seedCount: seedCount,
		now:       time.Now,
	}
}

// SetClock overrides the composer clock. Tests only.
func (c *Composer) SetClock(now func() time.Time) { c.now = now }

// Compose builds the feed for one request. Under recency the two families
// interleave by created_at; under popularity the confessions lead, ordered
// by likes, and the intel follows by recency. Seed filler only ever pads a
// recency feed that came back short on confessions.
func (c *Composer) Compose(ctx context.Context, req Request) ([]Item, error) {
	if req.Filter == "" {
		req.Filter = FilterAll
	}
	var scope *store.GeoScope
	if req.Viewer != nil {
		radius := req.RadiusM
		if radius <= 0 {
			radius = DefaultRadiusM
		}
		scope = &store.GeoScope{Origin: *req.Viewer, MaxMeters: radius}
	}

	var postViews []*PostView
	if req.Filter == FilterAll || req.Filter == FilterConfession {
		posts, err := c.posts.List(ctx, store.PostQuery{
			Geo:         scope,
			City:        req.City,
			Institution: req.Institution,
			Topic:       req.Topic,
			Sort:        req.Sort,
			Limit:       c.limit,
		})
		if err != nil {
			return nil, err
		}
		postViews, err = c.annotatePosts(ctx, req, posts)
		if err != nil {
			return nil, err
		}
	}

	var intelViews []*IntelView
	if req.Filter != FilterConfession {
		var typ models.IntelType
		switch req.Filter {
		case FilterDeal:
			typ = models.IntelTypeDeal
		case FilterHeadsUp:
			typ = models.IntelTypeHeadsUp
		}
		intel, err := c.intel.List(ctx, store.IntelQuery{
			Geo:   scope,
			City:  req.City,
			Type:  typ,
			Limit: intelCap,
		})
		if err != nil {
			return nil, err
		}
		intelViews = annotateIntel(req.Viewer, intel)
	}

	if req.Sort != store.SortPopular &&
		(req.Filter == FilterAll || req.Filter == FilterConfession) &&
		len(postViews) < c.limit {
		postViews = append(postViews, c.seedViews(c.limit-len(postViews))...)
	}

	return merge(postViews, intelViews, req.Sort), nil
}

func (c *Composer) annotatePosts(ctx context.Context, req Request, posts []*models.Post) ([]*PostView, error) {
	liked := map[string]bool{}
	if req.AnonID != "" && len(posts) > 0 {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		var err error
		liked, err = c.likes.LikedSet(ctx, req.AnonID, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]*PostView, len(posts))
	for i, p := range posts {
		views[i] = &PostView{
			Post:           *p,
			HasLiked:       liked[p.ID],
			DistanceBucket: geo.Resolve(req.Viewer, pointOf(p.Lat, p.Long)),
			ItemType:       FilterConfession,
		}
	}
	return views, nil
}

func annotateIntel(viewer *geo.Point, intel []*models.IntelPost) []*IntelView {
	views := make([]*IntelView, len(intel))
	for i, p := range intel {
		typ := FilterDeal
		if p.Type == models.IntelTypeHeadsUp {
			typ = FilterHeadsUp
		}
		views[i] = &IntelView{
			IntelPost:      *p,
			DistanceBucket: geo.Resolve(viewer, pointOf(p.Lat, p.Long)).IntelLabel(),
			ItemType:       typ,
		}
	}
	return views
}

func pointOf(lat, long *float64) *geo.Point {
	if lat == nil || long == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Long: *long}
}

func merge(posts []*PostView, intel []*IntelView, sortMode store.SortMode) []Item {
	items := make([]Item, 0, len(posts)+len(intel))
	if sortMode == store.SortPopular {
		for _, p := range posts {
			items = append(items, p)
		}
		for _, p := range intel {
			items = append(items, p)
		}
		return items
	}
	for _, p := range posts {
		items = append(items, p)
	}
	for _, p := range intel {
		items = append(items, p)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
	return items
}

func createdAt(it Item) time.Time {
	switch v := it.(type) {
	case *PostView:
		return v.CreatedAt
	case *IntelView:
		return v.CreatedAt
	}
	return time.Time{}
}
