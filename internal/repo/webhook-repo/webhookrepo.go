package webhookrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const eventColumns = `id, txn_id, payment_status, order_id, receiver_email, gross,
       payload, verified, processed_at, processing_error, created_at`

// Insert stores an inbound notification. The second return value is
// false when an event with the same (txn_id, payment_status) pair was
// already recorded, which means the notification is a redelivery.
func (r *Repository) Insert(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	query := `
        INSERT INTO webhook_events (txn_id, payment_status, receiver_email, gross, payload, verified, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (txn_id, payment_status) DO NOTHING
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, event.TxnID, event.PaymentStatus, event.ReceiverEmail,
		event.Gross, event.Payload, event.Verified, event.CreatedAt).Scan(&event.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		zap.L().Error("can't save webhook event", zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.WebhookEvent, error) {
	query := `
        SELECT ` + eventColumns + `
        FROM webhook_events
        WHERE id = $1
    `
	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find webhook event", zap.Error(err))
		return nil, err
	}
	return event, nil
}

// FindForReplay returns verified events that never completed
// processing, oldest first, skipping anything newer than the grace
// interval so in-flight requests are not raced. Events with a recorded
// processing error are deterministic failures (receiver or amount
// mismatch, dead order reference); retrying them cannot change the
// outcome, so they are left to the operator replay endpoint.
func (r *Repository) FindForReplay(ctx context.Context, limit uint32, grace time.Duration) ([]domain.WebhookEvent, error) {
	query := `
        SELECT ` + eventColumns + `
        FROM webhook_events
        WHERE verified AND processed_at IS NULL AND processing_error = '' AND created_at < $1
        ORDER BY created_at ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, time.Now().Add(-grace), int(limit))
	if err != nil {
		zap.L().Error("can't get webhook events for replay", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			zap.L().Error("can't scan webhook event row", zap.Error(err))
			return nil, err
		}
		events = append(events, *event)
	}
	return events, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, id int, orderID string) error {
	query := `
        UPDATE webhook_events
        SET processed_at = $1, processing_error = '', order_id = NULLIF($2, '')
        WHERE id = $3
    `
	if _, err := r.db.Exec(ctx, query, time.Now(), orderID, id); err != nil {
		zap.L().Error("failed to mark webhook event processed", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, id int, processingError string) error {
	query := `
        UPDATE webhook_events
        SET processing_error = $1
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, processingError, id); err != nil {
		zap.L().Error("failed to mark webhook event failed", zap.Error(err))
		return err
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.WebhookEvent, error) {
	var event domain.WebhookEvent
	err := row.Scan(
		&event.ID, &event.TxnID, &event.PaymentStatus, &event.OrderID,
		&event.ReceiverEmail, &event.Gross, &event.Payload, &event.Verified,
		&event.ProcessedAt, &event.ProcessingError, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
