package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/bisikapp/bisik/internal/models"
)

var postColumns = []string{
	"id", "anon_id", "content", "city", "institution", "topic", "gender",
	"occupation", "lat", "long", "likes", "created_at", "expires_at",
	"status", "is_seed",
}

type pgPosts struct {
	pool *pgxpool.Pool
}

func (s pgPosts) Create(ctx context.Context, p *models.Post) error {
	sql, args, _ := psql.
		Insert("posts").
		Columns(postColumns...).
		Values(p.ID, p.AnonID, p.Content, p.City, p.Institution, p.Topic,
			p.Gender, p.Occupation, p.Lat, p.Long, p.Likes, p.CreatedAt,
			p.ExpiresAt, p.Status, p.IsSeed).
		ToSql()
	_, err := s.pool.Exec(ctx, sql, args...)
	return err
}

func (s pgPosts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	sql, args, _ := psql.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id}).
		Where(notExpired).
		ToSql()

	var p models.Post
	err := pgxscan.Get(ctx, s.pool, &p, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s pgPosts) ListByAuthor(ctx context.Context, anonID string) ([]*models.Post, error) {
	sql, args, _ := psql.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"anon_id": anonID, "status": models.PostStatusActive, "is_seed": false}).
		Where(notExpired).
		OrderBy("created_at DESC").
		ToSql()

	var posts []*models.Post
	err := pgxscan.Select(ctx, s.pool, &posts, sql, args...)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s pgPosts) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	query := psql.
		Select(postColumns...).
		From("posts")

	// The geo scope, when present, replaces the city filter and is the
	// first stage so the spatial index drives the plan.
	if q.Geo != nil {
		query = query.Where(geoWhere(q.Geo))
	} else if q.City != "" {
		query = query.Where(sq.Eq{"city": q.City})
	}
	query = query.
		Where(sq.Eq{"status": models.PostStatusActive}).
		Where(notExpired)
	if q.Institution != "" {
		query = query.Where(sq.Eq{"institution": q.Institution})
	}
	if q.Topic != "" {
		query = query.Where(sq.Eq{"topic": q.Topic})
	}
	if q.Sort == SortPopular {
		query = query.OrderBy("likes DESC", "created_at DESC")
	} else {
		query = query.OrderBy("created_at DESC")
	}
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	sql, args, _ := query.ToSql()
	var posts []*models.Post
	err := pgxscan.Select(ctx, s.pool, &posts, sql, args...)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s pgPosts) UpdateContent(ctx context.Context, id, content string) error {
	sql, args, _ := psql.
		Update("posts").
		Set("content", content).
		Where(sq.Eq{"id": id}).
		Where(notExpired).
		ToSql()

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s pgPosts) Delete(ctx context.Context, id string) error {
	sql, args, _ := psql.
		Delete("posts").
		Where(sq.Eq{"id": id}).
		ToSql()

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
