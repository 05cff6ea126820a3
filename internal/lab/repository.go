package lab

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, l *Lab) error
	GetByID(ctx context.Context, id string) (*Lab, error)
	List(ctx context.Context, filter Filter) ([]*Lab, int, error)
	Update(ctx context.Context, l *Lab) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, l *Lab) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.labs").
		Columns("name", "location", "capacity", "status", "description", "image_url").
		Values(l.Name, l.Location, l.Capacity, l.Status, l.Description, l.ImageURL).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create lab query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Lab, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "location", "capacity", "status", "description", "image_url",
		"created_at", "updated_at",
	).
		From("public.labs").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get lab query failed: %w", err)
	}

	var l Lab
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&l.ID, &l.Name, &l.Location, &l.Capacity, &l.Status, &l.Description, &l.ImageURL,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lab failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Lab, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "location", "capacity", "status", "description", "image_url",
		"created_at", "updated_at", "count(*) OVER() as total_count",
	).
		From("public.labs").
		Where("deleted_at IS NULL")

	if filter.Keyword != "" {
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Keyword + "%"},
			squirrel.ILike{"location": "%" + filter.Keyword + "%"},
		})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list labs query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list labs failed: %w", err)
	}
	defer rows.Close()

	var labs []*Lab
	var total int

	for rows.Next() {
		var l Lab
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Location, &l.Capacity, &l.Status, &l.Description, &l.ImageURL,
			&l.CreatedAt, &l.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan lab failed: %w", err)
		}
		labs = append(labs, &l)
	}

	return labs, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, l *Lab) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.labs").
		Set("name", l.Name).
		Set("location", l.Location).
		Set("capacity", l.Capacity).
		Set("status", l.Status).
		Set("description", l.Description).
		Set("image_url", l.ImageURL).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": l.ID}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update lab query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lab failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.labs").
		Set("deleted_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lab query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete lab failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
