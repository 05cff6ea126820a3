package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create inserts a favorite. The unique index on (user_id, resource_id)
	// backs the involution guarantee; a lost race surfaces as
	// errAlreadyFavorited.
	Create(ctx context.Context, f *Favorite) error

	// Delete removes the favorite and reports whether a row existed.
	Delete(ctx context.Context, userID, resourceID string) (bool, error)

	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*Favorite, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, f *Favorite) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.favorites").
		Columns("user_id", "resource_id", "resource_kind").
		Values(f.UserID, f.ResourceID, f.Kind).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create favorite query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&f.ID, &f.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errAlreadyFavorited
		}
		return fmt.Errorf("create favorite failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, userID, resourceID string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM public.favorites WHERE user_id = $1 AND resource_id = $2`,
		userID, resourceID)
	if err != nil {
		return false, fmt.Errorf("delete favorite failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgxRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*Favorite, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(
		"id", "user_id", "resource_id", "resource_kind", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.favorites").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list favorites query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites failed: %w", err)
	}
	defer rows.Close()

	var favorites []*Favorite
	var total int

	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ResourceID, &f.Kind, &f.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan favorite failed: %w", err)
		}
		favorites = append(favorites, &f)
	}

	return favorites, total, nil
}
