package models

import "time"

type PostStatus string

const (
	PostStatusActive PostStatus = "active"
	PostStatusHidden PostStatus = "hidden"
)

const (
	MaxPostLen    = 500
	MaxCommentLen = 300

	// PostTTL is the fixed lifetime of a confession post.
	PostTTL = 48 * time.Hour
	// EditWindow is how long an author may still change the content.
	EditWindow = 15 * time.Minute
)

var Genders = []string{"M", "F", "NB"}

// Post is an anonymous confession. Coordinates are write-only: they feed
// proximity queries but are never serialized back to a viewer.
type Post struct {
	ID          string     `db:"id" json:"post_id"`
	AnonID      string     `db:"anon_id" json:"anon_id"`
	Content     string     `db:"content" json:"content"`
	City        string     `db:"city" json:"city"`
	Institution *string    `db:"institution" json:"institution,omitempty"`
	Topic       *string    `db:"topic" json:"topic,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Occupation  *string    `db:"occupation" json:"occupation,omitempty"`
	Lat         *float64   `db:"lat" json:"-"`
	Long        *float64   `db:"long" json:"-"`
	Likes       int        `db:"likes" json:"likes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	Status      PostStatus `db:"status" json:"-"`
	IsSeed      bool       `db:"is_seed" json:"is_seed"`
}

// Expired reports whether the post is logically gone, regardless of
// whether storage reclaimed it yet.
func (p *Post) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

// Editable reports whether the author may still change the content.
func (p *Post) Editable(now time.Time) bool {
	return now.Sub(p.CreatedAt) < EditWindow
}

func PostExpiresAt(created time.Time) time.Time {
	return created.Add(PostTTL)
}

// Comment is a short anonymous reply under a post. It never outlives the
// post it belongs to.
type Comment struct {
	ID        string    `db:"id" json:"comment_id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AnonID    string    `db:"anon_id" json:"anon_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// PostLike is the durable engagement edge between one identity and one
// post. Its existence is the source of truth for like state; Post.Likes
// is a cached projection of it.
type PostLike struct {
	PostID    string    `db:"post_id" json:"post_id"`
	AnonID    string    `db:"anon_id" json:"anon_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
