package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/bisikapp/bisik/internal/models"
)

type pgLikes struct {
	pool *pgxpool.Pool
}

// Toggle flips the like edge and the cached counter in one transaction.
// The row lock on the post serializes concurrent toggles by the same
// identity; the unique index on (post_id, anon_id) backs up the edge
// either way.
func (s pgLikes) Toggle(ctx context.Context, postID, anonID string) (likes int, hasLiked bool, err error) {
	err = execTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			"SELECT likes FROM posts WHERE id = $1 AND expires_at > now() FOR UPDATE",
			postID)
		if err := row.Scan(&likes); err != nil {
			if err == pgx.ErrNoRows {
				return models.ErrNotFound
			}
			return err
		}

		tag, err := tx.Exec(ctx,
			"DELETE FROM post_likes WHERE post_id = $1 AND anon_id = $2",
			postID, anonID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			hasLiked = false
			return tx.QueryRow(ctx,
				"UPDATE posts SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes",
				postID).Scan(&likes)
		}

		_, err = tx.Exec(ctx,
			"INSERT INTO post_likes (post_id, anon_id, expires_at) SELECT id, $2, expires_at FROM posts WHERE id = $1",
			postID, anonID)
		if err != nil {
			return err
		}
		hasLiked = true
		return tx.QueryRow(ctx,
			"UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes",
			postID).Scan(&likes)
	})
	return likes, hasLiked, err
}

func (s pgLikes) LikedSet(ctx context.Context, anonID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	sql, args, _ := psql.
		Select("post_id").
		From("post_likes").
		Where(sq.Eq{"anon_id": anonID, "post_id": postIDs}).
		ToSql()

	var liked []string
	err := pgxscan.Select(ctx, s.pool, &liked, sql, args...)
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

type pgComments struct {
	pool *pgxpool.Pool
}

func (s pgComments) Create(ctx context.Context, c *models.Comment) error {
	sql, args, _ := psql.
		Insert("comments").
		Columns("id", "post_id", "anon_id", "content", "created_at", "expires_at").
		Values(c.ID, c.PostID, c.AnonID, c.Content, c.CreatedAt, c.ExpiresAt).
		ToSql()
	_, err := s.pool.Exec(ctx, sql, args...)
	return err
}

func (s pgComments) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	sql, args, _ := psql.
		Select("id", "post_id", "anon_id", "content", "created_at", "expires_at").
		From("comments").
		Where(sq.Eq{"post_id": postID}).
		Where(notExpired).
		OrderBy("created_at ASC").
		ToSql()

	var comments []*models.Comment
	err := pgxscan.Select(ctx, s.pool, &comments, sql, args...)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
