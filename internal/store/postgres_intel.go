package store

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/bisikapp/bisik/internal/models"
)

var intelColumns = []string{
	"id", "anon_id", "type", "content", "city", "area", "lat", "long",
	"saves", "direction_clicks", "ack", "updates", "reports",
	"deal_validity", "deal_place_hint", "deal_seen_directly", "headsup_type",
	"created_at", "expires_at", "status",
}

// intelRow flattens the tagged union onto one relation; the variant metas
// come back as nullable columns and are folded into the model here.
type intelRow struct {
	ID               string             `db:"id"`
	AnonID           string             `db:"anon_id"`
	Type             models.IntelType   `db:"type"`
	Content          string             `db:"content"`
	City             string             `db:"city"`
	Area             *string            `db:"area"`
	Lat              *float64           `db:"lat"`
	Long             *float64           `db:"long"`
	Saves            int                `db:"saves"`
	DirectionClicks  int                `db:"direction_clicks"`
	Ack              int                `db:"ack"`
	Updates          int                `db:"updates"`
	Reports          int                `db:"reports"`
	DealValidity     *string            `db:"deal_validity"`
	DealPlaceHint    *string            `db:"deal_place_hint"`
	DealSeenDirectly *bool              `db:"deal_seen_directly"`
	HeadsUpType      *string            `db:"headsup_type"`
	CreatedAt        time.Time          `db:"created_at"`
	ExpiresAt        time.Time          `db:"expires_at"`
	Status           models.IntelStatus `db:"status"`
}

func (r *intelRow) model() *models.IntelPost {
	p := &models.IntelPost{
		ID:      r.ID,
		AnonID:  r.AnonID,
		Type:    r.Type,
		Content: r.Content,
		City:    r.City,
		Area:    r.Area,
		Lat:     r.Lat,
		Long:    r.Long,
		Metrics: models.IntelMetrics{
			Saves:           r.Saves,
			DirectionClicks: r.DirectionClicks,
			Ack:             r.Ack,
			Updates:         r.Updates,
			Reports:         r.Reports,
		},
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		Status:    r.Status,
	}
	switch r.Type {
	case models.IntelTypeDeal:
		meta := &models.DealMeta{PlaceHint: r.DealPlaceHint}
		if r.DealValidity != nil {
			meta.ValidityPreset = models.ValidityPreset(*r.DealValidity)
		}
		if r.DealSeenDirectly != nil {
			meta.SeenDirectly = *r.DealSeenDirectly
		}
		p.DealMeta = meta
	case models.IntelTypeHeadsUp:
		meta := &models.HeadsUpMeta{}
		if r.HeadsUpType != nil {
			meta.HeadsUpType = models.HeadsUpType(*r.HeadsUpType)
		}
		p.HeadsUp = meta
	}
	return p
}

type pgIntel struct {
	pool *pgxpool.Pool
}

func (s pgIntel) Create(ctx context.Context, p *models.IntelPost) error {
	var (
		dealValidity, dealPlaceHint, headsUpType *string
		dealSeenDirectly                         *bool
	)
	if p.DealMeta != nil {
		v := string(p.DealMeta.ValidityPreset)
		dealValidity = &v
		dealPlaceHint = p.DealMeta.PlaceHint
		dealSeenDirectly = &p.DealMeta.SeenDirectly
	}
	if p.HeadsUp != nil {
		t := string(p.HeadsUp.HeadsUpType)
		headsUpType = &t
	}

	sql, args, _ := psql.
		Insert("intel_posts").
		Columns(intelColumns...).
		Values(p.ID, p.AnonID, p.Type, p.Content, p.City, p.Area, p.Lat, p.Long,
			p.Metrics.Saves, p.Metrics.DirectionClicks, p.Metrics.Ack,
			p.Metrics.Updates, p.Metrics.Reports,
			dealValidity, dealPlaceHint, dealSeenDirectly, headsUpType,
			p.CreatedAt, p.ExpiresAt, p.Status).
		ToSql()
	_, err := s.pool.Exec(ctx, sql, args...)
	return err
}

func (s pgIntel) GetByID(ctx context.Context, id string) (*models.IntelPost, error) {
	sql, args, _ := psql.
		Select(intelColumns...).
		From("intel_posts").
		Where(sq.Eq{"id": id}).
		Where(notExpired).
		ToSql()

	var row intelRow
	err := pgxscan.Get(ctx, s.pool, &row, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

func (s pgIntel) List(ctx context.Context, q IntelQuery) ([]*models.IntelPost, error) {
	query := psql.
		Select(intelColumns...).
		From("intel_posts")

	if q.Geo != nil {
		query = query.Where(geoWhere(q.Geo))
	} else if q.City != "" {
		query = query.Where(sq.Eq{"city": q.City})
	}
	query = query.
		Where(sq.Eq{"status": models.IntelStatusActive}).
		Where(notExpired)
	if q.Type != "" {
		query = query.Where(sq.Eq{"type": q.Type})
	}
	query = query.OrderBy("created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	sql, args, _ := query.ToSql()
	var rows []*intelRow
	err := pgxscan.Select(ctx, s.pool, &rows, sql, args...)
	if err != nil {
		return nil, err
	}
	out := make([]*models.IntelPost, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s pgIntel) LatestByAuthor(ctx context.Context, anonID string, typ models.IntelType, since time.Time) (*models.IntelPost, error) {
	sql, args, _ := psql.
		Select(intelColumns...).
		From("intel_posts").
		Where(sq.Eq{"anon_id": anonID, "type": typ}).
		Where(sq.Gt{"created_at": since}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	var row intelRow
	err := pgxscan.Get(ctx, s.pool, &row, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

func (s pgIntel) UpdateContent(ctx context.Context, id, content string) error {
	sql, args, _ := psql.
		Update("intel_posts").
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

func (s pgIntel) Delete(ctx context.Context, id string) error {
	sql, args, _ := psql.
		Delete("intel_posts").
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

func (s pgIntel) IncrMetric(ctx context.Context, id string, metric Metric, delta int) (*models.IntelPost, error) {
	column, ok := map[Metric]string{
		MetricSaves:           "saves",
		MetricDirectionClicks: "direction_clicks",
		MetricAck:             "ack",
		MetricUpdates:         "updates",
		MetricReports:         "reports",
	}[metric]
	if !ok {
		return nil, models.ErrUnknownAction
	}

	// Single-statement increment: no read-modify-write round trip.
	sql, args, _ := psql.
		Update("intel_posts").
		Set(column, sq.Expr("GREATEST("+column+" + ?, 0)", delta)).
		Where(sq.Eq{"id": id}).
		Where(notExpired).
		Suffix("RETURNING " + strings.Join(intelColumns, ", ")).
		ToSql()

	var row intelRow
	err := pgxscan.Get(ctx, s.pool, &row, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

func (s pgIntel) SetStatus(ctx context.Context, id string, status models.IntelStatus) error {
	sql, args, _ := psql.
		Update("intel_posts").
		Set("status", status).
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
