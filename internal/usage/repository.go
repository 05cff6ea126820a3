package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/notification"
)

type Repository interface {
	// ApplyTx inserts a pending usage request while holding a row lock on
	// the instrument, so the availability and duplicate checks cannot race
	// with a concurrent application or approval.
	ApplyTx(ctx context.Context, u *UsageRequest) error

	GetByID(ctx context.Context, id string) (*UsageRequest, error)
	List(ctx context.Context, filter Filter) ([]*UsageRequest, int, error)

	// UpdateStatus persists a status change with its review metadata.
	UpdateStatus(ctx context.Context, u *UsageRequest) error

	// ReviewTx persists a review decision together with its notification.
	// When markBorrowed is set the instrument is locked, required to still
	// be active, and flipped to borrowed in the same transaction.
	ReviewTx(ctx context.Context, u *UsageRequest, n *notification.Notification, markBorrowed bool) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const lockInstrumentSQL = `
	SELECT status FROM public.instruments
	WHERE id = $1 AND deleted_at IS NULL
	FOR UPDATE
`

const overlapExistsSQL = `
	SELECT EXISTS (
		SELECT 1 FROM public.usage_requests
		WHERE instrument_id = $1
		  AND requester_id = $2
		  AND status IN ('pending', 'approved')
		  AND deleted_at IS NULL
		  AND start_time < $4
		  AND end_time > $3
	)
`

func (r *pgxRepository) ApplyTx(ctx context.Context, u *UsageRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin apply tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var status instrument.Status
	if err := tx.QueryRow(ctx, lockInstrumentSQL, u.InstrumentID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInstrumentNotFound
		}
		return fmt.Errorf("lock instrument failed: %w", err)
	}
	if status != instrument.StatusActive {
		return ErrInstrumentUnavailable
	}

	var overlap bool
	if err := tx.QueryRow(ctx, overlapExistsSQL,
		u.InstrumentID, u.RequesterID, u.StartTime, u.EndTime).Scan(&overlap); err != nil {
		return fmt.Errorf("check overlapping application failed: %w", err)
	}
	if overlap {
		return ErrDuplicateApplication
	}

	insertSQL := `
		INSERT INTO public.usage_requests
			(instrument_id, requester_id, start_time, end_time, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insertSQL,
		u.InstrumentID, u.RequesterID, u.StartTime, u.EndTime, u.Purpose, u.Status).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("create usage request failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit apply tx failed: %w", err)
	}
	return nil
}

const usageSelectColumns = `r.id, r.instrument_id, i.name, r.requester_id, u.display_name,
	r.start_time, r.end_time, r.purpose, r.status,
	r.rejection_reason, r.reviewed_by, r.reviewed_at, r.created_at, r.updated_at`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*UsageRequest, error) {
	query := `
		SELECT ` + usageSelectColumns + `
		FROM public.usage_requests r
		JOIN public.instruments i ON r.instrument_id = i.id
		JOIN public.users u ON r.requester_id = u.id
		WHERE r.id = $1 AND r.deleted_at IS NULL
	`

	var u UsageRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.InstrumentID, &u.InstrumentName, &u.RequesterID, &u.RequesterName,
		&u.StartTime, &u.EndTime, &u.Purpose, &u.Status,
		&u.RejectionReason, &u.ReviewedBy, &u.ReviewedAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get usage request failed: %w", err)
	}
	return &u, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*UsageRequest, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"r.id", "r.instrument_id", "i.name", "r.requester_id", "u.display_name",
		"r.start_time", "r.end_time", "r.purpose", "r.status",
		"r.rejection_reason", "r.reviewed_by", "r.reviewed_at", "r.created_at", "r.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.usage_requests r").
		Join("public.instruments i ON r.instrument_id = i.id").
		Join("public.users u ON r.requester_id = u.id").
		Where("r.deleted_at IS NULL")

	if filter.RequesterID != "" {
		query = query.Where(squirrel.Eq{"r.requester_id": filter.RequesterID})
	}
	if filter.InstrumentID != "" {
		query = query.Where(squirrel.Eq{"r.instrument_id": filter.InstrumentID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}

	query = query.OrderBy("r.start_time DESC", "r.created_at DESC")

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
		return nil, 0, fmt.Errorf("build list usage requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list usage requests failed: %w", err)
	}
	defer rows.Close()

	var requests []*UsageRequest
	var total int

	for rows.Next() {
		var u UsageRequest
		if err := rows.Scan(
			&u.ID, &u.InstrumentID, &u.InstrumentName, &u.RequesterID, &u.RequesterName,
			&u.StartTime, &u.EndTime, &u.Purpose, &u.Status,
			&u.RejectionReason, &u.ReviewedBy, &u.ReviewedAt, &u.CreatedAt, &u.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan usage request failed: %w", err)
		}
		requests = append(requests, &u)
	}

	return requests, total, nil
}

const updateStatusSQL = `
	UPDATE public.usage_requests
	SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = now()
	WHERE id = $5 AND deleted_at IS NULL
`

const insertNotificationSQL = `
	INSERT INTO public.notifications (recipient_id, kind, related_id, title, content)
	VALUES ($1, $2, $3, $4, $5)
`

const markBorrowedSQL = `
	UPDATE public.instruments
	SET status = 'borrowed', updated_at = now()
	WHERE id = $1 AND deleted_at IS NULL
`

func (r *pgxRepository) UpdateStatus(ctx context.Context, u *UsageRequest) error {
	ct, err := r.pool.Exec(ctx, updateStatusSQL,
		u.Status, u.RejectionReason, u.ReviewedBy, u.ReviewedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update usage request status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ReviewTx(ctx context.Context, u *UsageRequest, n *notification.Notification, markBorrowed bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if markBorrowed {
		var status instrument.Status
		if err := tx.QueryRow(ctx, lockInstrumentSQL, u.InstrumentID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInstrumentNotFound
			}
			return fmt.Errorf("lock instrument failed: %w", err)
		}
		if status != instrument.StatusActive {
			return ErrInstrumentUnavailable
		}
	}

	ct, err := tx.Exec(ctx, updateStatusSQL,
		u.Status, u.RejectionReason, u.ReviewedBy, u.ReviewedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update usage request status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, insertNotificationSQL,
		n.RecipientID, n.Kind, n.RelatedID, n.Title, n.Content); err != nil {
		return fmt.Errorf("insert review notification failed: %w", err)
	}

	if markBorrowed {
		if _, err := tx.Exec(ctx, markBorrowedSQL, u.InstrumentID); err != nil {
			return fmt.Errorf("mark instrument borrowed failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review tx failed: %w", err)
	}
	return nil
}
