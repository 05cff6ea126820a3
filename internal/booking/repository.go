package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sugar258596/experiment-server/internal/notification"
)

type Repository interface {
	// Create inserts a pending booking. The partial unique index on
	// (lab_id, booking_date, timeslot) over blocking statuses backs the
	// conflict check, so a lost race surfaces here as ErrSlotConflict.
	Create(ctx context.Context, b *Booking) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// HasSlotConflict checks whether a blocking booking already occupies
	// the same lab, date and timeslot.
	HasSlotConflict(ctx context.Context, labID string, date time.Time, slot Timeslot) (bool, error)

	// UpdateStatus persists a status change with its review metadata.
	UpdateStatus(ctx context.Context, b *Booking) error

	// ReviewTx persists a review decision and its notification in one
	// transaction so a decision is never visible without its notice.
	ReviewTx(ctx context.Context, b *Booking, n *notification.Notification) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.room_bookings").
		Columns("lab_id", "requester_id", "booking_date", "timeslot", "purpose", "participant_count", "status").
		Values(b.LabID, b.RequesterID, b.Date, b.Timeslot, b.Purpose, b.ParticipantCount, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

const bookingSelectColumns = `b.id, b.lab_id, l.name, b.requester_id, u.display_name,
	b.booking_date, b.timeslot, b.purpose, b.participant_count, b.status,
	b.rejection_reason, b.reviewed_by, b.reviewed_at, b.created_at, b.updated_at`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT ` + bookingSelectColumns + `
		FROM public.room_bookings b
		JOIN public.labs l ON b.lab_id = l.id
		JOIN public.users u ON b.requester_id = u.id
		WHERE b.id = $1 AND b.deleted_at IS NULL
	`

	var b Booking
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.LabID, &b.LabName, &b.RequesterID, &b.RequesterName,
		&b.Date, &b.Timeslot, &b.Purpose, &b.ParticipantCount, &b.Status,
		&b.RejectionReason, &b.ReviewedBy, &b.ReviewedAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.lab_id", "l.name", "b.requester_id", "u.display_name",
		"b.booking_date", "b.timeslot", "b.purpose", "b.participant_count", "b.status",
		"b.rejection_reason", "b.reviewed_by", "b.reviewed_at", "b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.room_bookings b").
		Join("public.labs l ON b.lab_id = l.id").
		Join("public.users u ON b.requester_id = u.id").
		Where("b.deleted_at IS NULL")

	if filter.RequesterID != "" {
		query = query.Where(squirrel.Eq{"b.requester_id": filter.RequesterID})
	}
	if filter.LabID != "" {
		query = query.Where(squirrel.Eq{"b.lab_id": filter.LabID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.booking_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.booking_date": *filter.DateTo})
	}

	query = query.OrderBy("b.booking_date DESC", "b.created_at DESC")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.LabID, &b.LabName, &b.RequesterID, &b.RequesterName,
			&b.Date, &b.Timeslot, &b.Purpose, &b.ParticipantCount, &b.Status,
			&b.RejectionReason, &b.ReviewedBy, &b.ReviewedAt, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) HasSlotConflict(ctx context.Context, labID string, date time.Time, slot Timeslot) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	statuses := make([]string, len(BlockingStatuses))
	for i, st := range BlockingStatuses {
		statuses[i] = string(st)
	}

	subQuery := psql.Select("1").
		From("public.room_bookings").
		Where(squirrel.Eq{"lab_id": labID}).
		Where(squirrel.Eq{"booking_date": date}).
		Where(squirrel.Eq{"timeslot": slot}).
		Where(squirrel.Eq{"status": statuses}).
		Where("deleted_at IS NULL")

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build slot conflict query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slot conflict failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking) error {
	ct, err := r.pool.Exec(ctx, updateStatusSQL,
		b.Status, b.RejectionReason, b.ReviewedBy, b.ReviewedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const updateStatusSQL = `
	UPDATE public.room_bookings
	SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = now()
	WHERE id = $5 AND deleted_at IS NULL
`

const insertNotificationSQL = `
	INSERT INTO public.notifications (recipient_id, kind, related_id, title, content)
	VALUES ($1, $2, $3, $4, $5)
`

func (r *pgxRepository) ReviewTx(ctx context.Context, b *Booking, n *notification.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, updateStatusSQL,
		b.Status, b.RejectionReason, b.ReviewedBy, b.ReviewedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, insertNotificationSQL,
		n.RecipientID, n.Kind, n.RelatedID, n.Title, n.Content); err != nil {
		return fmt.Errorf("insert review notification failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review tx failed: %w", err)
	}
	return nil
}
