package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/bisikapp/bisik/internal/models"
)

type pgReports struct {
	pool *pgxpool.Pool
}

func (s pgReports) Create(ctx context.Context, r *models.Report) error {
	sql, args, _ := psql.
		Insert("reports").
		Columns("id", "target_id", "target_type", "reported_by", "reported_user", "reason", "created_at").
		Values(r.ID, r.TargetID, r.TargetType, r.ReportedBy, r.ReportedUser, r.Reason, r.CreatedAt).
		ToSql()

	_, err := s.pool.Exec(ctx, sql, args...)
	if isUniqueViolation(err) {
		return models.ErrDuplicate
	}
	return err
}

func (s pgReports) Exists(ctx context.Context, targetID, reportedBy string) (bool, error) {
	var exists bool
	err := pgxscan.Get(ctx, s.pool, &exists,
		"SELECT exists(SELECT 1 FROM reports WHERE target_id = $1 AND reported_by = $2)",
		targetID, reportedBy)
	return exists, err
}

type pgBans struct {
	pool *pgxpool.Pool
}

func (s pgBans) Get(ctx context.Context, anonID string) (*models.BanRecord, error) {
	var rec models.BanRecord
	err := pgxscan.Get(ctx, s.pool, &rec,
		"SELECT anon_id, report_count, is_banned, banned_at, created_at FROM user_bans WHERE anon_id = $1",
		anonID)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sql, args, _ := psql.
		Select("reason", "target_type", "created_at").
		From("ban_warnings").
		Where(sq.Eq{"anon_id": anonID}).
		OrderBy("created_at ASC").
		ToSql()
	err = pgxscan.Select(ctx, s.pool, &rec.Warnings, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s pgBans) IsBanned(ctx context.Context, anonID string) (bool, error) {
	var banned bool
	err := pgxscan.Get(ctx, s.pool, &banned,
		"SELECT exists(SELECT 1 FROM user_bans WHERE anon_id = $1 AND is_banned)",
		anonID)
	return banned, err
}

// AddWarning runs the whole escalation in one transaction: upsert the
// record, bump the counter, append the warning, and set the ban flag only
// on the first crossing of banAt. The guarded UPDATE keeps the flag
// monotonic under concurrent reports.
func (s pgBans) AddWarning(ctx context.Context, anonID string, w models.Warning, banAt int) (*models.BanRecord, error) {
	err := execTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO user_bans (anon_id) VALUES ($1) ON CONFLICT (anon_id) DO NOTHING",
			anonID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"UPDATE user_bans SET report_count = report_count + 1 WHERE anon_id = $1",
			anonID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO ban_warnings (anon_id, reason, target_type, created_at) VALUES ($1, $2, $3, $4)",
			anonID, w.Reason, w.TargetType, w.Timestamp)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"UPDATE user_bans SET is_banned = true, banned_at = now() WHERE anon_id = $1 AND NOT is_banned AND report_count >= $2",
			anonID, banAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, anonID)
}
