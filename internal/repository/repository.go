package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/storage"
)

const linkColumns = "code, target_url, total_clicks, last_clicked_at, created_at"

// InitDB opens the postgres pool behind dsn, checks it and brings the schema
// up to date.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := Migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type LinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateLinkRepository(db *sql.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*storage.LinkRecord, error) {
	var r storage.LinkRecord
	var lastClicked sql.NullTime

	if err := row.Scan(&r.Code, &r.TargetURL, &r.TotalClicks, &lastClicked, &r.CreatedAt); err != nil {
		return nil, err
	}

	if lastClicked.Valid {
		t := lastClicked.Time
		r.LastClickedAt = &t
	}

	return &r, nil
}

// Insert relies on the primary key to reject duplicate codes.
func (r *LinkRepository) Insert(ctx context.Context, code, targetURL string) (*storage.LinkRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO links (code, target_url) VALUES ($1, $2) RETURNING "+linkColumns+";",
		code, targetURL,
	)

	rec, err := scanLink(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, storage.ErrConflict
		}

		r.logger.Error("insert link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("insert link: %w", err)
	}

	return rec, nil
}

func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*storage.LinkRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+linkColumns+" FROM links WHERE code = $1;", code)

	rec, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find link: %w", err)
	}

	return rec, nil
}

func (r *LinkRepository) FindAll(ctx context.Context) ([]storage.LinkRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+linkColumns+" FROM links ORDER BY created_at DESC, code;")
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	records := make([]storage.LinkRecord, 0)
	for rows.Next() {
		rec, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *LinkRepository) DeleteByCode(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM links WHERE code = $1;", code); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// IncrementClicks bumps the counter in a single statement so concurrent
// redirects never lose updates. GREATEST keeps last_clicked_at from falling
// behind created_at under clock skew.
func (r *LinkRepository) IncrementClicks(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE links SET total_clicks = total_clicks + 1, last_clicked_at = GREATEST(NOW(), created_at) WHERE code = $1;",
		code,
	)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (r *LinkRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
