package webhookrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkostin/shardstore/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Insert(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()

	event := &domain.WebhookEvent{
		TxnID:         "7FJ82234MM961844T",
		PaymentStatus: "Completed",
		ReceiverEmail: "store@shardstore.example",
		Gross:         decimal.NewFromInt(85),
		Payload:       "txn_id=7FJ82234MM961844T&payment_status=Completed",
		Verified:      true,
		CreatedAt:     now,
	}

	tests := []struct {
		name         string
		mockSetup    func()
		expectErr    bool
		wantInserted bool
	}{
		{
			name: "New event inserted",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO webhook_events`)).
					WithArgs(event.TxnID, event.PaymentStatus, event.ReceiverEmail,
						event.Gross, event.Payload, event.Verified, event.CreatedAt).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(3))
			},
			expectErr:    false,
			wantInserted: true,
		},
		{
			name: "Redelivered event is deduplicated",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO webhook_events`)).
					WithArgs(event.TxnID, event.PaymentStatus, event.ReceiverEmail,
						event.Gross, event.Payload, event.Verified, event.CreatedAt).
					WillReturnRows(pgxmock.NewRows([]string{"id"}))
			},
			expectErr:    false,
			wantInserted: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO webhook_events`)).
					WithArgs(event.TxnID, event.PaymentStatus, event.ReceiverEmail,
						event.Gross, event.Payload, event.Verified, event.CreatedAt).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			inserted, err := repo.Insert(ctx, event)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantInserted, inserted)
			}
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()

	t.Run("Event found", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"id", "txn_id", "payment_status", "order_id", "receiver_email", "gross",
			"payload", "verified", "processed_at", "processing_error", "created_at",
		}).AddRow(3, "7FJ82234MM961844T", "Completed", nil, "store@shardstore.example",
			decimal.NewFromInt(85), "txn_id=7FJ82234MM961844T", true, nil, "", now)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WithArgs(3).WillReturnRows(rows)

		event, err := repo.FindByID(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, 3, event.ID)
		assert.Equal(t, "7FJ82234MM961844T", event.TxnID)
		assert.True(t, event.Verified)
		assert.Nil(t, event.ProcessedAt)
	})

	t.Run("Unknown id returns nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WithArgs(99).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		event, err := repo.FindByID(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestRepository_FindForReplay(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)
	now := time.Now()

	t.Run("Returns unprocessed events past the grace interval", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"id", "txn_id", "payment_status", "order_id", "receiver_email", "gross",
			"payload", "verified", "processed_at", "processing_error", "created_at",
		}).AddRow(1, "7FJ82234MM961844T", "Completed", nil, "store@shardstore.example",
			decimal.NewFromInt(85), "txn_id=7FJ82234MM961844T", true, nil, "", now.Add(-time.Hour))
		// Deterministic failures carry a processing_error and must stay
		// out of the automatic sweep.
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE verified AND processed_at IS NULL AND processing_error = '' AND created_at < $1`)).
			WithArgs(pgxmock.AnyArg(), 100).
			WillReturnRows(rows)

		events, err := repo.FindForReplay(ctx, 100, time.Minute)
		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, 1, events[0].ID)
		assert.Empty(t, events[0].ProcessingError)
	})

	t.Run("Query error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs(pgxmock.AnyArg(), 100).
			WillReturnError(errors.New("database error"))

		_, err := repo.FindForReplay(ctx, 100, time.Minute)
		assert.Error(t, err)
	})
}

func TestRepository_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)

	t.Run("Marks event processed", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE webhook_events`)).
			WithArgs(pgxmock.AnyArg(), "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3", 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.MarkProcessed(ctx, 3, "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3")
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE webhook_events`)).
			WithArgs(pgxmock.AnyArg(), "", 3).
			WillReturnError(errors.New("database error"))

		err := repo.MarkProcessed(ctx, 3, "")
		assert.Error(t, err)
	})
}

func TestRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)

	t.Run("Records processing error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE webhook_events`)).
			WithArgs("order not found for notification", 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.MarkFailed(ctx, 3, "order not found for notification")
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE webhook_events`)).
			WithArgs("order not found for notification", 3).
			WillReturnError(errors.New("database error"))

		err := repo.MarkFailed(ctx, 3, "order not found for notification")
		assert.Error(t, err)
	})
}
