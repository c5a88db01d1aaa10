package cashbackrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func (r *Repository) GetBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error) {
	query := `
        SELECT id, user_id, balance
        FROM cashback_balances
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	var balance domain.CashbackBalance
	err := row.Scan(&balance.ID, &balance.UserID, &balance.Balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to get cashback balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) CreateBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error) {
	query := `
        INSERT INTO cashback_balances (user_id, balance)
        VALUES ($1, 0)
        RETURNING id, user_id, balance
    `
	row := r.db.QueryRow(ctx, query, userID)
	var balance domain.CashbackBalance
	err := row.Scan(&balance.ID, &balance.UserID, &balance.Balance)
	if err != nil {
		zap.L().Error("failed to create cashback balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) UpdateBalance(ctx context.Context, userID int, balance decimal.Decimal) (*domain.CashbackBalance, error) {
	var updated domain.CashbackBalance
	query := `
		UPDATE cashback_balances
		SET balance = $1
		WHERE user_id = $2
		RETURNING id, user_id, balance
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query, balance, userID)
		err := row.Scan(&updated.ID, &updated.UserID, &updated.Balance)
		if err != nil {
			zap.L().Error("failed to update cashback balance", zap.Error(err))
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Repository) AddEntry(ctx context.Context, entry *domain.CashbackEntry) (*domain.CashbackEntry, error) {
	query := `
		INSERT INTO cashback_entries (user_id, order_id, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, entry.UserID, entry.OrderID, entry.Amount,
		entry.Kind, entry.Description, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		zap.L().Error("can't save cashback entry", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (r *Repository) GetEntriesByUserID(ctx context.Context, userID int) ([]domain.CashbackEntry, error) {
	query := `
        SELECT id, user_id, order_id, amount, kind, description, created_at
        FROM cashback_entries
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch cashback entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CashbackEntry
	for rows.Next() {
		var e domain.CashbackEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.Amount, &e.Kind, &e.Description, &e.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan cashback entry row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
