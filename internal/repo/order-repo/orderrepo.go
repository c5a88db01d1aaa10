package orderrepo

import (
	"context"
	"errors"
	"time"

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

const orderColumns = `id, user_id, status, payment_status, subtotal, premium_discount,
       discount_amount, cashback_used, total_amount, delivery_shard, delivery_character,
       coupon_code, gift_id, payment_transaction_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.UserID, &order.Status, &order.PaymentStatus,
		&order.Subtotal, &order.PremiumDiscount, &order.DiscountAmount,
		&order.CashbackUsed, &order.TotalAmount, &order.DeliveryShard,
		&order.DeliveryCharacter, &order.CouponCode, &order.GiftID,
		&order.PaymentTransactionID, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	query := `
        INSERT INTO orders (id, user_id, status, payment_status, subtotal, premium_discount,
                            discount_amount, cashback_used, total_amount, delivery_shard,
                            delivery_character, coupon_code, gift_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			order.ID, order.UserID, order.Status, order.PaymentStatus,
			order.Subtotal, order.PremiumDiscount, order.DiscountAmount,
			order.CashbackUsed, order.TotalAmount, order.DeliveryShard,
			order.DeliveryCharacter, order.CouponCode, order.GiftID,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return r.insertItems(ctx, order.ID, items)
	})
	if err != nil {
		return err
	}
	return nil
}

// UpdateTotals rewrites the financial columns and delivery metadata of a
// still-pending order and fully replaces its line items.
func (r *Repository) UpdateTotals(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	query := `
        UPDATE orders
        SET subtotal = $1, premium_discount = $2, discount_amount = $3, cashback_used = $4,
            total_amount = $5, delivery_shard = $6, delivery_character = $7,
            coupon_code = $8, gift_id = $9, updated_at = $10
        WHERE id = $11
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			order.Subtotal, order.PremiumDiscount, order.DiscountAmount,
			order.CashbackUsed, order.TotalAmount, order.DeliveryShard,
			order.DeliveryCharacter, order.CouponCode, order.GiftID,
			time.Now(), order.ID,
		)
		if err != nil {
			zap.L().Error("failed to update order totals", zap.Error(err))
			return err
		}
		if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			zap.L().Error("failed to delete order items", zap.Error(err))
			return err
		}
		return r.insertItems(ctx, order.ID, items)
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *Repository) insertItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	query := `
        INSERT INTO order_items (order_id, item_id, name, quantity, unit_price, total_price, details)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	for _, item := range items {
		_, err := r.db.Exec(ctx, query,
			orderID, item.ItemID, item.Name, item.Quantity,
			item.UnitPrice, item.TotalPrice, item.Details,
		)
		if err != nil {
			zap.L().Error("can't save order item", zap.Error(err))
			return err
		}
	}
	return nil
}

func (r *Repository) FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
        SELECT id, order_id, item_id, name, quantity, unit_price, total_price, details
        FROM order_items
        WHERE order_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ItemID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.Details)
		if err != nil {
			zap.L().Error("can't scan order item row", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SumPendingCashback returns the cashback already committed to the
// user's pending orders, excluding excludeOrderID when editing one of
// them in place.
func (r *Repository) SumPendingCashback(ctx context.Context, userID int, excludeOrderID string) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(cashback_used), 0)
        FROM orders
        WHERE user_id = $1 AND status = 'pending' AND id::text <> $2
    `
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, query, userID, excludeOrderID).Scan(&sum)
	if err != nil {
		zap.L().Error("can't sum pending cashback", zap.Error(err))
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *Repository) UpdatePaymentState(ctx context.Context, orderID, status, paymentStatus, txnID string) error {
	query := `
        UPDATE orders
        SET status = $1, payment_status = $2, payment_transaction_id = $3, updated_at = $4
        WHERE id = $5
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, status, paymentStatus, txnID, time.Now(), orderID)
		if err != nil {
			zap.L().Error("failed to update order payment state", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
