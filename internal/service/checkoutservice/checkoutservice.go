package checkoutservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
	"github.com/mkostin/shardstore/internal/service/settingsservice"
)

type OrderRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Order, error)
	Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	UpdateTotals(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
}

type CouponRepo interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FirstCharacterName(ctx context.Context, userID int) (string, error)
}

type CashbackProvider interface {
	Available(ctx context.Context, userID int, excludeOrderID string) (decimal.Decimal, error)
}

type SettingsProvider interface {
	Snapshot(ctx context.Context) (*settingsservice.Snapshot, error)
}

var (
	ErrInsufficientBalance = errors.New("requested cashback exceeds available balance")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotEditable    = errors.New("order is no longer pending")
	ErrUserNotFound        = errors.New("user not found")
)

type CartLine struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Details   []byte
}

type Input struct {
	Lines           []CartLine
	Shard           string
	CouponCode      string
	GiftID          string
	CashbackToUse   decimal.Decimal
	ExistingOrderID string
}

// PaymentForm is the field set the storefront posts to the payment
// provider. Custom carries the order id so the IPN can be matched back.
type PaymentForm struct {
	Business     string
	ItemName     string
	Amount       string
	CurrencyCode string
	Return       string
	CancelReturn string
	NotifyURL    string
	Custom       string
	NoShipping   string
	NoNote       string
	Charset      string
}

type Result struct {
	Order     *domain.Order
	Form      PaymentForm
	PayPalURL string
}

type Service struct {
	orderRepo  OrderRepo
	couponRepo CouponRepo
	userRepo   UserRepo
	cashback   CashbackProvider
	settings   SettingsProvider
	txManager  pg.TXManager
	cfg        *config.Config
}

func New(orderRepo OrderRepo, couponRepo CouponRepo, userRepo UserRepo, cashback CashbackProvider, settings SettingsProvider, txManager pg.TXManager, cfg *config.Config) *Service {
	return &Service{
		orderRepo:  orderRepo,
		couponRepo: couponRepo,
		userRepo:   userRepo,
		cashback:   cashback,
		settings:   settings,
		txManager:  txManager,
		cfg:        cfg,
	}
}

// Checkout turns a cart into a persisted pending order and the payment
// form for it. Discounts stack in a fixed order: premium tier first,
// then coupon, then cashback; the total never drops below zero.
func (s *Service) Checkout(ctx context.Context, userID int, in Input) (*Result, error) {
	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, domain.OrderItem{
			ItemID:     line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: lineTotal,
			Details:    line.Details,
		})
	}

	premiumDiscount := decimal.Zero
	if user.IsPremium {
		premiumDiscount = subtotal.Mul(snapshot.PremiumDiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
	}

	discountAmount := decimal.Zero
	var couponCode *string
	if in.CouponCode != "" {
		coupon, err := s.couponRepo.FindByCode(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponNotFound
		}
		if coupon.Valid(subtotal, time.Now()) {
			discountAmount = couponDiscount(coupon, subtotal, subtotal.Sub(premiumDiscount))
			couponCode = &coupon.Code
		} else {
			zap.L().Info("coupon not applicable", zap.String("code", coupon.Code))
		}
	}

	order := &domain.Order{
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Subtotal:        subtotal,
		PremiumDiscount: premiumDiscount,
		DiscountAmount:  discountAmount,
		CashbackUsed:    in.CashbackToUse,
		DeliveryShard:   in.Shard,
		CouponCode:      couponCode,
	}
	if in.GiftID != "" {
		order.GiftID = &in.GiftID
	}
	order.TotalAmount = subtotal.Sub(premiumDiscount).Sub(discountAmount).Sub(in.CashbackToUse)
	if order.TotalAmount.IsNegative() {
		order.TotalAmount = decimal.Zero
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		available, err := s.cashback.Available(ctx, userID, in.ExistingOrderID)
		if err != nil {
			return err
		}
		if in.CashbackToUse.GreaterThan(available) {
			return ErrInsufficientBalance
		}

		if in.ExistingOrderID != "" {
			return s.updateExisting(ctx, userID, in.ExistingOrderID, order, items)
		}
		return s.createNew(ctx, order, items)
	})
	if err != nil {
		return nil, err
	}

	form := s.buildPaymentForm(order, snapshot)
	return &Result{
		Order:     order,
		Form:      form,
		PayPalURL: s.cfg.PayPalURL,
	}, nil
}

func (s *Service) createNew(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	order.ID = uuid.NewString()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	character, err := s.userRepo.FirstCharacterName(ctx, order.UserID)
	if err != nil {
		return err
	}
	order.DeliveryCharacter = character

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		zap.L().Error("can't create order", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) updateExisting(ctx context.Context, userID int, orderID string, order *domain.Order, items []domain.OrderItem) error {
	existing, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return ErrOrderNotFound
	}
	if existing.Status != domain.OrderStatusPending {
		return ErrOrderNotEditable
	}

	order.ID = existing.ID
	order.CreatedAt = existing.CreatedAt
	order.DeliveryCharacter = existing.DeliveryCharacter

	if err := s.orderRepo.UpdateTotals(ctx, order, items); err != nil {
		zap.L().Error("can't update order", zap.Error(err))
		return err
	}
	return nil
}

// couponDiscount computes the coupon's cut: a percentage applies to the
// subtotal, a fixed value is capped at what remains after the premium
// discount.
func couponDiscount(coupon *domain.Coupon, subtotal, remaining decimal.Decimal) decimal.Decimal {
	switch coupon.DiscountType {
	case domain.DiscountTypePercentage:
		return subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100)).Round(2)
	case domain.DiscountTypeFixed:
		if coupon.Value.GreaterThan(remaining) {
			return remaining
		}
		return coupon.Value
	default:
		zap.L().Warn("unknown coupon discount type", zap.String("type", coupon.DiscountType))
		return decimal.Zero
	}
}

func (s *Service) buildPaymentForm(order *domain.Order, snapshot *settingsservice.Snapshot) PaymentForm {
	itemName := "Store order"
	if len(order.DeliveryShard) > 0 {
		itemName = "Store order (" + order.DeliveryShard + ")"
	}
	return PaymentForm{
		Business:     snapshot.BusinessEmail,
		ItemName:     itemName,
		Amount:       order.TotalAmount.StringFixed(2),
		CurrencyCode: s.cfg.Currency,
		Return:       s.cfg.SiteURL + "/checkout/success",
		CancelReturn: s.cfg.SiteURL + "/checkout/cancel",
		NotifyURL:    s.cfg.SiteURL + "/api/payment/ipn",
		Custom:       order.ID,
		NoShipping:   "1",
		NoNote:       "1",
		Charset:      "utf-8",
	}
}

func (s *Service) GetOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}
