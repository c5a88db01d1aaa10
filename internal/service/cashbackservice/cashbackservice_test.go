package cashbackservice

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockBalanceRepo, *MockOrderRepo) {
	ctrl := gomock.NewController(t)
	balanceRepo := NewMockBalanceRepo(ctrl)
	orderRepo := NewMockOrderRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().
		Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	service := New(balanceRepo, orderRepo, txManager)
	defer ctrl.Finish()
	return service, balanceRepo, orderRepo
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		excludeOrderID string
		prepareMock    func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo)
		expected       decimal.Decimal
		expectErr      bool
	}{
		{
			name: "Balance minus pending holds",
			prepareMock: func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo) {
				balanceRepo.EXPECT().GetBalance(ctx, 1).
					Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(20)}, nil)
				orderRepo.EXPECT().SumPendingCashback(ctx, 1, "").
					Return(decimal.NewFromInt(8), nil)
			},
			expected: decimal.NewFromInt(12),
		},
		{
			name:           "Edited order hold is excluded",
			excludeOrderID: "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3",
			prepareMock: func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo) {
				balanceRepo.EXPECT().GetBalance(ctx, 1).
					Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(20)}, nil)
				orderRepo.EXPECT().SumPendingCashback(ctx, 1, "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3").
					Return(decimal.Zero, nil)
			},
			expected: decimal.NewFromInt(20),
		},
		{
			name: "No balance row means zero",
			prepareMock: func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo) {
				balanceRepo.EXPECT().GetBalance(ctx, 1).Return(nil, nil)
			},
			expected: decimal.Zero,
		},
		{
			name: "Holds above balance floor at zero",
			prepareMock: func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo) {
				balanceRepo.EXPECT().GetBalance(ctx, 1).
					Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(5)}, nil)
				orderRepo.EXPECT().SumPendingCashback(ctx, 1, "").
					Return(decimal.NewFromInt(9), nil)
			},
			expected: decimal.Zero,
		},
		{
			name: "Balance lookup error",
			prepareMock: func(balanceRepo *MockBalanceRepo, orderRepo *MockOrderRepo) {
				balanceRepo.EXPECT().GetBalance(ctx, 1).Return(nil, errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, balanceRepo, orderRepo := NewMock(t)
			tt.prepareMock(balanceRepo, orderRepo)

			available, err := service.Available(ctx, 1, tt.excludeOrderID)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, available.Equal(tt.expected),
					"expected %s, got %s", tt.expected, available)
			}
		})
	}
}

func TestDebit(t *testing.T) {
	ctx := context.Background()
	orderID := "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3"

	t.Run("Debits and records an audit entry", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).
			Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(20)}, nil)
		balanceRepo.EXPECT().UpdateBalance(ctx, 1, gomock.Any()).
			DoAndReturn(func(ctx context.Context, userID int, balance decimal.Decimal) (*domain.CashbackBalance, error) {
				assert.True(t, balance.Equal(decimal.NewFromInt(15)))
				return &domain.CashbackBalance{UserID: 1, Balance: balance}, nil
			})
		balanceRepo.EXPECT().AddEntry(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *domain.CashbackEntry) (*domain.CashbackEntry, error) {
				assert.Equal(t, domain.CashbackKindDebit, entry.Kind)
				assert.True(t, entry.Amount.Equal(decimal.NewFromInt(-5)))
				assert.Equal(t, orderID, *entry.OrderID)
				return entry, nil
			})

		err := service.Debit(ctx, 1, orderID, decimal.NewFromInt(5), "cashback redeemed")
		assert.NoError(t, err)
	})

	t.Run("Insufficient live balance", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).
			Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(3)}, nil)

		err := service.Debit(ctx, 1, orderID, decimal.NewFromInt(5), "cashback redeemed")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("Missing balance row", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).Return(nil, nil)

		err := service.Debit(ctx, 1, orderID, decimal.NewFromInt(5), "cashback redeemed")
		assert.ErrorIs(t, err, ErrBalanceNotFound)
	})
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	orderID := "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3"

	t.Run("Credits and records an audit entry", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).
			Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(10)}, nil)
		balanceRepo.EXPECT().UpdateBalance(ctx, 1, gomock.Any()).
			DoAndReturn(func(ctx context.Context, userID int, balance decimal.Decimal) (*domain.CashbackBalance, error) {
				assert.True(t, balance.Equal(decimal.NewFromFloat(14.25)))
				return &domain.CashbackBalance{UserID: 1, Balance: balance}, nil
			})
		balanceRepo.EXPECT().AddEntry(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *domain.CashbackEntry) (*domain.CashbackEntry, error) {
				assert.Equal(t, domain.CashbackKindCredit, entry.Kind)
				assert.True(t, entry.Amount.Equal(decimal.NewFromFloat(4.25)))
				return entry, nil
			})

		err := service.Credit(ctx, 1, orderID, decimal.NewFromFloat(4.25), "purchase cashback")
		assert.NoError(t, err)
	})

	t.Run("Creates missing balance row on the fly", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).Return(nil, nil)
		balanceRepo.EXPECT().CreateBalance(ctx, 1).
			Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.Zero}, nil)
		balanceRepo.EXPECT().UpdateBalance(ctx, 1, gomock.Any()).
			DoAndReturn(func(ctx context.Context, userID int, balance decimal.Decimal) (*domain.CashbackBalance, error) {
				assert.True(t, balance.Equal(decimal.NewFromFloat(4.25)))
				return &domain.CashbackBalance{UserID: 1, Balance: balance}, nil
			})
		balanceRepo.EXPECT().AddEntry(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, entry *domain.CashbackEntry) (*domain.CashbackEntry, error) {
				return entry, nil
			})

		err := service.Credit(ctx, 1, orderID, decimal.NewFromFloat(4.25), "purchase cashback")
		assert.NoError(t, err)
	})

	t.Run("Update failure rolls back", func(t *testing.T) {
		service, balanceRepo, _ := NewMock(t)

		balanceRepo.EXPECT().GetBalance(ctx, 1).
			Return(&domain.CashbackBalance{UserID: 1, Balance: decimal.NewFromInt(10)}, nil)
		balanceRepo.EXPECT().UpdateBalance(ctx, 1, gomock.Any()).
			Return(nil, errors.New("database error"))

		err := service.Credit(ctx, 1, orderID, decimal.NewFromInt(1), "purchase cashback")
		assert.Error(t, err)
	})
}

func TestCreateBalance(t *testing.T) {
	ctx := context.Background()
	service, balanceRepo, _ := NewMock(t)

	balanceRepo.EXPECT().CreateBalance(ctx, 1).
		Return(&domain.CashbackBalance{ID: 1, UserID: 1, Balance: decimal.Zero}, nil)

	balance, err := service.CreateBalance(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, balance.UserID)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	service, balanceRepo, _ := NewMock(t)

	balanceRepo.EXPECT().GetBalance(ctx, 1).
		Return(&domain.CashbackBalance{ID: 1, UserID: 1, Balance: decimal.NewFromInt(7)}, nil)

	balance, err := service.GetBalance(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(7)))
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	service, balanceRepo, _ := NewMock(t)

	balanceRepo.EXPECT().GetEntriesByUserID(ctx, 1).Return([]domain.CashbackEntry{
		{ID: 2, UserID: 1, Kind: domain.CashbackKindCredit},
		{ID: 1, UserID: 1, Kind: domain.CashbackKindDebit},
	}, nil)

	entries, err := service.GetHistory(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
