package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

// Postgres implements Store on a pgx connection pool. All statements go
// through the squirrel builder; counters are mutated with SQL increments
// and uniqueness lives in the schema, never in check-then-insert logic.
type Postgres struct {
	pool *pgxpool.Pool
}

func MigrateUp(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	defer m.Close()
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrating up: %w", err)
	}
	return nil
}

func MigrateDown(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	defer m.Close()
	err = m.Down()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrating down: %w", err)
	}
	return nil
}

func Drop(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	defer m.Close()
	err = m.Drop()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("dropping: %w", err)
	}
	return nil
}

func Connect(ctx context.Context, dbURL string) (*Postgres, error) {
	pool, err := pgxpool.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Store() Store {
	return Store{
		Posts:    pgPosts{p.pool},
		Intel:    pgIntel{p.pool},
		Likes:    pgLikes{p.pool},
		Comments: pgComments{p.pool},
		Reports:  pgReports{p.pool},
		Bans:     pgBans{p.pool},
	}
}

// ReapExpired physically removes records past their expiry. Reads are
// already correct without it; this only keeps the tables small. Safe to
// run concurrently from several instances.
func (p *Postgres) ReapExpired(ctx context.Context) (int64, error) {
	var reaped int64
	for _, table := range []string{"comments", "post_likes", "posts", "intel_posts"} {
		tag, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE expires_at <= now()", table))
		if err != nil {
			return reaped, err
		}
		reaped += tag.RowsAffected()
	}
	return reaped, nil
}

func execTx(ctx context.Context, pool *pgxpool.Pool, txFunc func(context.Context, pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	err = txFunc(ctx, tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notExpired is part of every read path, independent of physical reaping.
var notExpired = sq.Expr("expires_at > now()")

func geoWhere(scope *GeoScope) sq.Sqlizer {
	return sq.Expr(
		"lat IS NOT NULL AND long IS NOT NULL AND haversine_m(lat, long, ?, ?) <= ?",
		scope.Origin.Lat, scope.Origin.Long, scope.MaxMeters,
	)
}
