package cashbackservice

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
)

type BalanceRepo interface {
	GetBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error)
	CreateBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error)
	UpdateBalance(ctx context.Context, userID int, balance decimal.Decimal) (*domain.CashbackBalance, error)
	AddEntry(ctx context.Context, entry *domain.CashbackEntry) (*domain.CashbackEntry, error)
	GetEntriesByUserID(ctx context.Context, userID int) ([]domain.CashbackEntry, error)
}

type OrderRepo interface {
	SumPendingCashback(ctx context.Context, userID int, excludeOrderID string) (decimal.Decimal, error)
}

type Service struct {
	balanceRepo BalanceRepo
	orderRepo   OrderRepo
	txManager   pg.TXManager
}

func New(balanceRepo BalanceRepo, orderRepo OrderRepo, txManager pg.TXManager) *Service {
	return &Service{
		balanceRepo: balanceRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
	}
}

var (
	ErrInsufficientBalance = errors.New("insufficient cashback balance")
	ErrBalanceNotFound     = errors.New("cashback balance not found")
)

func (s *Service) CreateBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error) {
	balance, err := s.balanceRepo.CreateBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to create cashback balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error) {
	balance, err := s.balanceRepo.GetBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get cashback balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

// Available returns the balance minus cashback already held by the
// user's other pending orders, so two open checkouts cannot spend the
// same credit twice. excludeOrderID ignores the hold of the order being
// edited in place.
func (s *Service) Available(ctx context.Context, userID int, excludeOrderID string) (decimal.Decimal, error) {
	balance, err := s.balanceRepo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if balance == nil {
		return decimal.Zero, nil
	}

	held, err := s.orderRepo.SumPendingCashback(ctx, userID, excludeOrderID)
	if err != nil {
		return decimal.Zero, err
	}

	available := balance.Balance.Sub(held)
	if available.IsNegative() {
		return decimal.Zero, nil
	}
	return available, nil
}

// Debit removes amount from the ledger and appends an audit entry, all
// inside one transaction. The live balance is re-checked at debit time.
func (s *Service) Debit(ctx context.Context, userID int, orderID string, amount decimal.Decimal, description string) error {
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		balance, err := s.balanceRepo.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance == nil {
			return ErrBalanceNotFound
		}
		if balance.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		if _, err := s.balanceRepo.UpdateBalance(ctx, userID, balance.Balance.Sub(amount)); err != nil {
			zap.L().Error("failed to debit cashback balance", zap.Error(err))
			return err
		}

		entry := &domain.CashbackEntry{
			UserID:      userID,
			OrderID:     &orderID,
			Amount:      amount.Neg(),
			Kind:        domain.CashbackKindDebit,
			Description: description,
			CreatedAt:   time.Now(),
		}
		if _, err := s.balanceRepo.AddEntry(ctx, entry); err != nil {
			zap.L().Error("failed to record cashback debit", zap.Error(err))
			return err
		}
		return nil
	})
}

// Credit adds amount to the ledger and appends an audit entry in one
// transaction. A missing balance row is created on the fly.
func (s *Service) Credit(ctx context.Context, userID int, orderID string, amount decimal.Decimal, description string) error {
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		balance, err := s.balanceRepo.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance == nil {
			balance, err = s.balanceRepo.CreateBalance(ctx, userID)
			if err != nil {
				return err
			}
		}

		if _, err := s.balanceRepo.UpdateBalance(ctx, userID, balance.Balance.Add(amount)); err != nil {
			zap.L().Error("failed to credit cashback balance", zap.Error(err))
			return err
		}

		entry := &domain.CashbackEntry{
			UserID:      userID,
			OrderID:     &orderID,
			Amount:      amount,
			Kind:        domain.CashbackKindCredit,
			Description: description,
			CreatedAt:   time.Now(),
		}
		if _, err := s.balanceRepo.AddEntry(ctx, entry); err != nil {
			zap.L().Error("failed to record cashback credit", zap.Error(err))
			return err
		}
		return nil
	})
}

func (s *Service) GetHistory(ctx context.Context, userID int) ([]domain.CashbackEntry, error) {
	entries, err := s.balanceRepo.GetEntriesByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch cashback history", zap.Error(err))
		return nil, err
	}
	return entries, nil
}
