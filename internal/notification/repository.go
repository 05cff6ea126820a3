package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// CreateBatch inserts one row per notification and returns the number
	// created. Used by the broadcast fan-out.
	CreateBatch(ctx context.Context, ns []*Notification) (int, error)

	ListByRecipient(ctx context.Context, recipientID string, filter Filter) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) (int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	SoftDelete(ctx context.Context, id, recipientID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, n *Notification) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.notifications").
		Columns("recipient_id", "kind", "related_id", "title", "content").
		Values(n.RecipientID, n.Kind, n.RelatedID, n.Title, n.Content).
		Suffix("RETURNING id, is_read, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create notification query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt, &n.UpdatedAt)
}

func (r *pgxRepository) CreateBatch(ctx context.Context, ns []*Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Insert("public.notifications").
		Columns("recipient_id", "kind", "related_id", "title", "content")
	for _, n := range ns {
		query = query.Values(n.RecipientID, n.Kind, n.RelatedID, n.Title, n.Content)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build batch notification query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("batch create notifications failed: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

func (r *pgxRepository) ListByRecipient(ctx context.Context, recipientID string, filter Filter) ([]*Notification, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "recipient_id", "kind", "related_id", "title", "content",
		"is_read", "created_at", "updated_at", "count(*) OVER() as total_count",
	).
		From("public.notifications").
		Where(squirrel.Eq{"recipient_id": recipientID}).
		Where("deleted_at IS NULL")

	if filter.UnreadOnly {
		query = query.Where(squirrel.Eq{"is_read": false})
	}
	if filter.OnlyRelated {
		query = query.Where("related_id IS NOT NULL")
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
		return nil, 0, fmt.Errorf("build list notifications query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications failed: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	var total int

	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Kind, &n.RelatedID, &n.Title, &n.Content,
			&n.IsRead, &n.CreatedAt, &n.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan notification failed: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, total, nil
}

// MarkAsRead flips is_read for a notification owned by recipientID.
// Marking an already-read notification is a no-op, not an error.
func (r *pgxRepository) MarkAsRead(ctx context.Context, id, recipientID string) error {
	const query = `
		UPDATE public.notifications
		SET is_read = true, updated_at = now()
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL
	`
	ct, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int, error) {
	const query = `
		UPDATE public.notifications
		SET is_read = true, updated_at = now()
		WHERE recipient_id = $1 AND is_read = false AND deleted_at IS NULL
	`
	ct, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *pgxRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	const query = `
		SELECT count(*)
		FROM public.notifications
		WHERE recipient_id = $1 AND is_read = false AND deleted_at IS NULL
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count unread notifications failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) SoftDelete(ctx context.Context, id, recipientID string) error {
	const query = `
		UPDATE public.notifications
		SET deleted_at = now()
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL
	`
	ct, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("delete notification failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
