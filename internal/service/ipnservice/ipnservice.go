package ipnservice

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
	"github.com/mkostin/shardstore/internal/service/settingsservice"
)

type OrderRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdatePaymentState(ctx context.Context, orderID, status, paymentStatus, txnID string) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type WebhookRepo interface {
	Insert(ctx context.Context, event *domain.WebhookEvent) (bool, error)
	FindByID(ctx context.Context, id int) (*domain.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id int, orderID string) error
	MarkFailed(ctx context.Context, id int, processingError string) error
}

type Verifier interface {
	Verify(rawBody string) (bool, error)
}

type CashbackService interface {
	Debit(ctx context.Context, userID int, orderID string, amount decimal.Decimal, description string) error
	Credit(ctx context.Context, userID int, orderID string, amount decimal.Decimal, description string) error
}

type Notifier interface {
	SendOrderConfirmation(user *domain.User, order *domain.Order) error
	UpsertSubscriber(user *domain.User, order *domain.Order) error
}

type SettingsProvider interface {
	Snapshot(ctx context.Context) (*settingsservice.Snapshot, error)
}

var (
	ErrMalformedPayload = errors.New("malformed notification payload")
	ErrNotVerified      = errors.New("notification did not verify against the payment provider")
	ErrReceiverMismatch = errors.New("receiver email does not match business account")
	ErrMissingOrderRef  = errors.New("notification carries no order reference")
	ErrOrderNotFound    = errors.New("order not found for notification")
	ErrAmountMismatch   = errors.New("notification amount does not match order total")
	ErrEventNotFound    = errors.New("webhook event not found")
)

// Notification is one parsed IPN call.
type Notification struct {
	TxnID         string
	PaymentStatus string
	ReceiverEmail string
	Custom        string
	Gross         decimal.Decimal
	Currency      string
	PayerEmail    string
	Raw           string
}

// ParseNotification decodes a URL-form-encoded IPN body.
func ParseNotification(raw string) (*Notification, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	n := &Notification{
		TxnID:         values.Get("txn_id"),
		PaymentStatus: values.Get("payment_status"),
		ReceiverEmail: values.Get("receiver_email"),
		Custom:        values.Get("custom"),
		Currency:      values.Get("mc_currency"),
		PayerEmail:    values.Get("payer_email"),
		Raw:           raw,
	}
	if gross := values.Get("mc_gross"); gross != "" {
		n.Gross, err = decimal.NewFromString(gross)
		if err != nil {
			return nil, fmt.Errorf("%w: bad mc_gross: %v", ErrMalformedPayload, err)
		}
	}
	return n, nil
}

// mapStatus translates the provider's payment status into the order
// state pair. The false return means the status is not one we act on.
func mapStatus(paymentStatus string) (status, payment string, known bool) {
	switch paymentStatus {
	case "Completed":
		return domain.OrderStatusPaid, domain.PaymentStatusCompleted, true
	case "Pending":
		return domain.OrderStatusPending, domain.PaymentStatusPending, true
	case "Failed", "Denied", "Expired", "Canceled_Reversal":
		return domain.OrderStatusCancelled, domain.PaymentStatusFailed, true
	case "Refunded", "Reversed":
		return domain.OrderStatusRefunded, domain.PaymentStatusRefunded, true
	default:
		return "", "", false
	}
}

type Service struct {
	orderRepo   OrderRepo
	userRepo    UserRepo
	webhookRepo WebhookRepo
	verifier    Verifier
	cashback    CashbackService
	notifier    Notifier
	settings    SettingsProvider
	txManager   pg.TXManager
}

func New(orderRepo OrderRepo, userRepo UserRepo, webhookRepo WebhookRepo, verifier Verifier, cashback CashbackService, notifier Notifier, settings SettingsProvider, txManager pg.TXManager) *Service {
	return &Service{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		webhookRepo: webhookRepo,
		verifier:    verifier,
		cashback:    cashback,
		notifier:    notifier,
		settings:    settings,
		txManager:   txManager,
	}
}

// HandleNotification runs the full gate sequence for a fresh inbound
// IPN body: verify with the provider, record the event (deduplicating
// redeliveries), then reconcile. A deduplicated notification is
// acknowledged without touching the order again.
func (s *Service) HandleNotification(ctx context.Context, rawBody string) error {
	n, err := ParseNotification(rawBody)
	if err != nil {
		return err
	}

	verified, err := s.verifier.Verify(n.Raw)
	if err != nil {
		zap.L().Error("IPN verification round-trip failed", zap.Error(err), zap.String("txn_id", n.TxnID))
		return ErrNotVerified
	}
	if !verified {
		zap.L().Warn("IPN did not verify", zap.String("txn_id", n.TxnID))
		return ErrNotVerified
	}

	event := &domain.WebhookEvent{
		TxnID:         n.TxnID,
		PaymentStatus: n.PaymentStatus,
		ReceiverEmail: n.ReceiverEmail,
		Gross:         n.Gross,
		Payload:       n.Raw,
		Verified:      true,
		CreatedAt:     time.Now(),
	}
	inserted, err := s.webhookRepo.Insert(ctx, event)
	if err != nil {
		return err
	}
	if !inserted {
		zap.L().Info("duplicate IPN acknowledged",
			zap.String("txn_id", n.TxnID), zap.String("payment_status", n.PaymentStatus))
		return nil
	}

	if err := s.reconcile(ctx, event.ID, n); err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			zap.L().Error("can't record IPN failure", zap.Error(markErr))
		}
		return err
	}
	return nil
}

// Replay re-runs a stored event through the reconciliation pipeline,
// skipping the provider round-trip: the stored body was verified when
// it arrived.
func (s *Service) Replay(ctx context.Context, eventID int) error {
	event, err := s.webhookRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	return s.ProcessStored(ctx, event)
}

func (s *Service) ProcessStored(ctx context.Context, event *domain.WebhookEvent) error {
	n, err := ParseNotification(event.Payload)
	if err != nil {
		return err
	}

	if err := s.reconcile(ctx, event.ID, n); err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			zap.L().Error("can't record IPN failure", zap.Error(markErr))
		}
		return err
	}
	return nil
}

// reconcile applies gates 2-4 of the pipeline and the state transition.
// Each gate aborts before any order mutation.
func (s *Service) reconcile(ctx context.Context, eventID int, n *Notification) error {
	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	if n.ReceiverEmail != snapshot.BusinessEmail {
		zap.L().Warn("IPN receiver mismatch",
			zap.String("receiver", n.ReceiverEmail), zap.String("txn_id", n.TxnID))
		return ErrReceiverMismatch
	}

	if n.Custom == "" {
		return ErrMissingOrderRef
	}
	// Order ids are UUIDs; anything else can never match and would only
	// trip the typed id column in Postgres.
	if _, err := uuid.Parse(n.Custom); err != nil {
		zap.L().Warn("IPN order reference is not a valid id",
			zap.String("custom", n.Custom), zap.String("txn_id", n.TxnID))
		return ErrOrderNotFound
	}
	order, err := s.orderRepo.FindByID(ctx, n.Custom)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return err
	}

	if !n.Gross.Round(2).Equal(order.TotalAmount.Round(2)) {
		zap.L().Warn("IPN amount mismatch",
			zap.String("order_id", order.ID),
			zap.String("mc_gross", n.Gross.StringFixed(2)),
			zap.String("total_amount", order.TotalAmount.StringFixed(2)))
		return ErrAmountMismatch
	}

	status, paymentStatus, known := mapStatus(n.PaymentStatus)
	if !known {
		zap.L().Info("ignoring unhandled IPN payment status",
			zap.String("payment_status", n.PaymentStatus), zap.String("order_id", order.ID))
		return s.webhookRepo.MarkProcessed(ctx, eventID, order.ID)
	}

	alreadyCompleted := order.PaymentStatus == domain.PaymentStatusCompleted

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		return s.orderRepo.UpdatePaymentState(ctx, order.ID, status, paymentStatus, n.TxnID)
	})
	if err != nil {
		return err
	}

	if paymentStatus == domain.PaymentStatusCompleted && !alreadyCompleted {
		s.runCompletionSideEffects(ctx, order, user, snapshot)
	}

	return s.webhookRepo.MarkProcessed(ctx, eventID, order.ID)
}

// runCompletionSideEffects fires the one-time effects of a successful
// payment. Each is independently best-effort: a failure is logged and
// never rolls back the state transition already committed.
func (s *Service) runCompletionSideEffects(ctx context.Context, order *domain.Order, user *domain.User, snapshot *settingsservice.Snapshot) {
	if order.CashbackUsed.IsPositive() {
		err := s.cashback.Debit(ctx, order.UserID, order.ID, order.CashbackUsed,
			fmt.Sprintf("cashback redeemed on order %s", order.ID))
		if err != nil {
			zap.L().Error("failed to debit redeemed cashback",
				zap.Error(err), zap.String("order_id", order.ID))
		}
	}

	earned := order.TotalAmount.Mul(snapshot.CashbackPercent).Div(decimal.NewFromInt(100)).Round(2)
	if earned.IsPositive() {
		err := s.cashback.Credit(ctx, order.UserID, order.ID, earned,
			fmt.Sprintf("purchase cashback for order %s", order.ID))
		if err != nil {
			zap.L().Error("failed to credit purchase cashback",
				zap.Error(err), zap.String("order_id", order.ID))
		}
	}

	if user == nil {
		return
	}
	if err := s.notifier.SendOrderConfirmation(user, order); err != nil {
		zap.L().Error("failed to send order confirmation",
			zap.Error(err), zap.String("order_id", order.ID))
	}
	if err := s.notifier.UpsertSubscriber(user, order); err != nil {
		zap.L().Error("failed to upsert mailing list subscriber",
			zap.Error(err), zap.String("order_id", order.ID))
	}
}
