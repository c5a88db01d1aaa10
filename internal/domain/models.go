package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	IsPremium    bool      `db:"is_premium"`
	CreatedAt    time.Time `db:"created_at"`
}

type Character struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Name      string    `db:"name"`
	Shard     string    `db:"shard"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	OrderStatusPending   string = "pending"
	OrderStatusPaid      string = "paid"
	OrderStatusCancelled string = "cancelled"
	OrderStatusRefunded  string = "refunded"
)

const (
	PaymentStatusPending   string = "pending"
	PaymentStatusCompleted string = "completed"
	PaymentStatusFailed    string = "failed"
	PaymentStatusRefunded  string = "refunded"
)

// Order is one purchase attempt. The UUID doubles as the correlation
// token echoed back by the payment provider in the IPN "custom" field.
type Order struct {
	ID                   string          `db:"id"`
	UserID               int             `db:"user_id"`
	Status               string          `db:"status"`
	PaymentStatus        string          `db:"payment_status"`
	Subtotal             decimal.Decimal `db:"subtotal"`
	PremiumDiscount      decimal.Decimal `db:"premium_discount"`
	DiscountAmount       decimal.Decimal `db:"discount_amount"`
	CashbackUsed         decimal.Decimal `db:"cashback_used"`
	TotalAmount          decimal.Decimal `db:"total_amount"`
	DeliveryShard        string          `db:"delivery_shard"`
	DeliveryCharacter    string          `db:"delivery_character"`
	CouponCode           *string         `db:"coupon_code"`
	GiftID               *string         `db:"gift_id"`
	PaymentTransactionID *string         `db:"payment_transaction_id"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// OrderItem is a line item snapshot taken at purchase time.
type OrderItem struct {
	ID         int             `db:"id"`
	OrderID    string          `db:"order_id"`
	ItemID     string          `db:"item_id"`
	Name       string          `db:"name"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price"`
	Details    []byte          `db:"details"`
}

const (
	DiscountTypePercentage string = "percentage"
	DiscountTypeFixed      string = "fixed"
)

type Coupon struct {
	ID            int             `db:"id"`
	Code          string          `db:"code"`
	DiscountType  string          `db:"discount_type"`
	Value         decimal.Decimal `db:"value"`
	MinimumAmount decimal.Decimal `db:"minimum_amount"`
	IsActive      bool            `db:"is_active"`
	StartsAt      *time.Time      `db:"starts_at"`
	ExpiresAt     *time.Time      `db:"expires_at"`
}

// Valid reports whether the coupon may be applied to an order with the
// given subtotal at the given moment.
func (c *Coupon) Valid(subtotal decimal.Decimal, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return subtotal.GreaterThanOrEqual(c.MinimumAmount)
}

type CashbackBalance struct {
	ID      int             `db:"id"`
	UserID  int             `db:"user_id"`
	Balance decimal.Decimal `db:"balance"`
}

const (
	CashbackKindCredit string = "credit"
	CashbackKindDebit  string = "debit"
)

type CashbackEntry struct {
	ID          int             `db:"id"`
	UserID      int             `db:"user_id"`
	OrderID     *string         `db:"order_id"`
	Amount      decimal.Decimal `db:"amount"`
	Kind        string          `db:"kind"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// WebhookEvent stores one inbound IPN call. The (TxnID, PaymentStatus)
// pair is the idempotency key: the provider reuses a transaction id
// across lifecycle statuses but never resends the same pair after an
// acknowledgment it accepts.
type WebhookEvent struct {
	ID              int             `db:"id"`
	TxnID           string          `db:"txn_id"`
	PaymentStatus   string          `db:"payment_status"`
	OrderID         *string         `db:"order_id"`
	ReceiverEmail   string          `db:"receiver_email"`
	Gross           decimal.Decimal `db:"gross"`
	Payload         string          `db:"payload"`
	Verified        bool            `db:"verified"`
	ProcessedAt     *time.Time      `db:"processed_at"`
	ProcessingError string          `db:"processing_error"`
	CreatedAt       time.Time       `db:"created_at"`
}

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
