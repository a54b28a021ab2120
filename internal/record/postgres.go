package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the subset of pgxpool.Pool used by PostgresUpdater.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresUpdater updates rows directly over a pgx connection pool.
type PostgresUpdater struct {
	db     execer
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewPostgresUpdater connects to dsn and verifies the connection.
func NewPostgresUpdater(ctx context.Context, dsn, table string, logger *slog.Logger) (*PostgresUpdater, error) {
	const op = "record.NewPostgresUpdater"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	u := newPostgresUpdater(pool, table, logger)
	u.pool = pool
	return u, nil
}

func newPostgresUpdater(db execer, table string, logger *slog.Logger) *PostgresUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUpdater{db: db, table: table, logger: logger}
}

// Close releases the connection pool.
func (u *PostgresUpdater) Close() {
	if u.pool != nil {
		u.pool.Close()
	}
}

// Update sets column to value on the row whose id is generationID.
// A statement that matches no row reports false.
func (u *PostgresUpdater) Update(ctx context.Context, generationID string, column Column, value string) bool {
	tag, err := u.db.Exec(ctx, updateSQL(u.table, column), value, generationID)
	if err != nil {
		u.logger.Error("record update failed",
			slog.String("generation_id", generationID),
			slog.String("column", string(column)),
			slog.String("error", err.Error()),
		)
		return false
	}
	if tag.RowsAffected() == 0 {
		u.logger.Warn("record update matched no rows",
			slog.String("generation_id", generationID),
			slog.String("column", string(column)),
		)
		return false
	}
	return true
}

func updateSQL(table string, column Column) string {
	return fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id::text = $2",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{string(column)}.Sanitize(),
	)
}
