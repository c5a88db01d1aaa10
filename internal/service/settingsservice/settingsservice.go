package settingsservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	GetAll(ctx context.Context) (map[string]string, error)
}

// Snapshot is the site configuration both flows depend on, loaded once
// per request instead of queried ad hoc mid-flow.
type Snapshot struct {
	BusinessEmail          string
	CashbackPercent        decimal.Decimal
	PremiumDiscountPercent decimal.Decimal
}

const (
	KeyBusinessEmail          = "business_email"
	KeyCashbackPercent        = "cashback_percentage"
	KeyPremiumDiscountPercent = "premium_discount_percentage"
)

var ErrMissingSetting = errors.New("missing required site setting")

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
	}
}

// Snapshot loads and validates the full settings set. A missing or
// malformed required key fails the calling flow closed.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return nil, err
	}

	snapshot := &Snapshot{}

	snapshot.BusinessEmail = values[KeyBusinessEmail]
	if snapshot.BusinessEmail == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingSetting, KeyBusinessEmail)
	}

	snapshot.CashbackPercent, err = requiredDecimal(values, KeyCashbackPercent)
	if err != nil {
		return nil, err
	}
	snapshot.PremiumDiscountPercent, err = requiredDecimal(values, KeyPremiumDiscountPercent)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func requiredDecimal(values map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := values[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", ErrMissingSetting, key)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrMissingSetting, key)
	}
	return value, nil
}
