package instrument

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, ins *Instrument) error
	GetByID(ctx context.Context, id string) (*Instrument, error)
	List(ctx context.Context, filter Filter) ([]*Instrument, int, error)
	Update(ctx context.Context, ins *Instrument) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, ins *Instrument) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.instruments").
		Columns("name", "model", "location", "status", "description", "image_url").
		Values(ins.Name, ins.Model, ins.Location, ins.Status, ins.Description, ins.ImageURL).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create instrument query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&ins.ID, &ins.CreatedAt, &ins.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Instrument, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "model", "location", "status", "description", "image_url",
		"created_at", "updated_at",
	).
		From("public.instruments").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get instrument query failed: %w", err)
	}

	var ins Instrument
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ins.ID, &ins.Name, &ins.Model, &ins.Location, &ins.Status, &ins.Description, &ins.ImageURL,
		&ins.CreatedAt, &ins.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get instrument failed: %w", err)
	}
	return &ins, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Instrument, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "model", "location", "status", "description", "image_url",
		"created_at", "updated_at", "count(*) OVER() as total_count",
	).
		From("public.instruments").
		Where("deleted_at IS NULL")

	if filter.Keyword != "" {
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Keyword + "%"},
			squirrel.ILike{"model": "%" + filter.Keyword + "%"},
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
		return nil, 0, fmt.Errorf("build list instruments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list instruments failed: %w", err)
	}
	defer rows.Close()

	var instruments []*Instrument
	var total int

	for rows.Next() {
		var ins Instrument
		if err := rows.Scan(
			&ins.ID, &ins.Name, &ins.Model, &ins.Location, &ins.Status, &ins.Description, &ins.ImageURL,
			&ins.CreatedAt, &ins.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan instrument failed: %w", err)
		}
		instruments = append(instruments, &ins)
	}

	return instruments, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, ins *Instrument) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.instruments").
		Set("name", ins.Name).
		Set("model", ins.Model).
		Set("location", ins.Location).
		Set("status", ins.Status).
		Set("description", ins.Description).
		Set("image_url", ins.ImageURL).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ins.ID}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update instrument query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update instrument failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	const query = `
		UPDATE public.instruments
		SET status = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`
	ct, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update instrument status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.instruments").
		Set("deleted_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete instrument query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete instrument failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
