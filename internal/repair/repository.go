package repair

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sugar258596/experiment-server/internal/notification"
)

type Repository interface {
	Create(ctx context.Context, t *RepairTicket) error
	GetByID(ctx context.Context, id string) (*RepairTicket, error)
	List(ctx context.Context, filter Filter) ([]*RepairTicket, int, error)

	// UpdateStatusTx persists a status change and its notification to the
	// reporter in one transaction.
	UpdateStatusTx(ctx context.Context, t *RepairTicket, n *notification.Notification) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, t *RepairTicket) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.repair_tickets").
		Columns("instrument_id", "reporter_id", "fault_type", "urgency", "description", "status").
		Values(t.InstrumentID, t.ReporterID, t.FaultType, t.Urgency, t.Description, t.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create ticket query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("create repair ticket failed: %w", err)
	}
	return nil
}

const ticketSelectColumns = `t.id, t.instrument_id, i.name, t.reporter_id, u.display_name,
	t.fault_type, t.urgency, t.description, t.summary, t.status,
	t.handled_by, t.completed_at, t.created_at, t.updated_at`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*RepairTicket, error) {
	query := `
		SELECT ` + ticketSelectColumns + `
		FROM public.repair_tickets t
		JOIN public.instruments i ON t.instrument_id = i.id
		JOIN public.users u ON t.reporter_id = u.id
		WHERE t.id = $1 AND t.deleted_at IS NULL
	`

	var t RepairTicket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.InstrumentID, &t.InstrumentName, &t.ReporterID, &t.ReporterName,
		&t.FaultType, &t.Urgency, &t.Description, &t.Summary, &t.Status,
		&t.HandledBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get repair ticket failed: %w", err)
	}
	return &t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*RepairTicket, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"t.id", "t.instrument_id", "i.name", "t.reporter_id", "u.display_name",
		"t.fault_type", "t.urgency", "t.description", "t.summary", "t.status",
		"t.handled_by", "t.completed_at", "t.created_at", "t.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.repair_tickets t").
		Join("public.instruments i ON t.instrument_id = i.id").
		Join("public.users u ON t.reporter_id = u.id").
		Where("t.deleted_at IS NULL")

	if filter.ReporterID != "" {
		query = query.Where(squirrel.Eq{"t.reporter_id": filter.ReporterID})
	}
	if filter.InstrumentID != "" {
		query = query.Where(squirrel.Eq{"t.instrument_id": filter.InstrumentID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"t.status": filter.Status})
	}
	if filter.Urgency != "" {
		query = query.Where(squirrel.Eq{"t.urgency": filter.Urgency})
	}

	query = query.OrderBy("t.created_at DESC")

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
		return nil, 0, fmt.Errorf("build list tickets query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list repair tickets failed: %w", err)
	}
	defer rows.Close()

	var tickets []*RepairTicket
	var total int

	for rows.Next() {
		var t RepairTicket
		if err := rows.Scan(
			&t.ID, &t.InstrumentID, &t.InstrumentName, &t.ReporterID, &t.ReporterName,
			&t.FaultType, &t.Urgency, &t.Description, &t.Summary, &t.Status,
			&t.HandledBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan repair ticket failed: %w", err)
		}
		tickets = append(tickets, &t)
	}

	return tickets, total, nil
}

const updateStatusSQL = `
	UPDATE public.repair_tickets
	SET status = $1, summary = $2, handled_by = $3, completed_at = $4, updated_at = now()
	WHERE id = $5 AND deleted_at IS NULL
`

const insertNotificationSQL = `
	INSERT INTO public.notifications (recipient_id, kind, related_id, title, content)
	VALUES ($1, $2, $3, $4, $5)
`

func (r *pgxRepository) UpdateStatusTx(ctx context.Context, t *RepairTicket, n *notification.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, updateStatusSQL,
		t.Status, t.Summary, t.HandledBy, t.CompletedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update ticket status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, insertNotificationSQL,
		n.RecipientID, n.Kind, n.RelatedID, n.Title, n.Content); err != nil {
		return fmt.Errorf("insert status notification failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit status tx failed: %w", err)
	}
	return nil
}
