package couponrepo

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

func TestRepository_FindByCode(t *testing.T) {
	ctx := context.Background()
	repo, mock := NewMock(t)

	query := `SELECT id, code, discount_type, value, minimum_amount, is_active, starts_at, expires_at FROM coupons WHERE code = $1`
	expires := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name      string
		code      string
		mockSetup func()
		expectErr bool
		result    *domain.Coupon
	}{
		{
			name: "Coupon found",
			code: "fiveoff",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{
					"id", "code", "discount_type", "value", "minimum_amount",
					"is_active", "starts_at", "expires_at",
				}).AddRow(1, "fiveoff", "fixed", decimal.NewFromInt(5), decimal.Zero, true, nil, &expires)
				mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("fiveoff").WillReturnRows(rows)
			},
			expectErr: false,
			result: &domain.Coupon{
				ID:            1,
				Code:          "fiveoff",
				DiscountType:  domain.DiscountTypeFixed,
				Value:         decimal.NewFromInt(5),
				MinimumAmount: decimal.Zero,
				IsActive:      true,
				ExpiresAt:     &expires,
			},
		},
		{
			name: "Unknown code returns nil",
			code: "nosuch",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("nosuch").
					WillReturnRows(pgxmock.NewRows([]string{"id"}))
			},
			expectErr: false,
			result:    nil,
		},
		{
			name: "Database error",
			code: "fiveoff",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("fiveoff").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			coupon, err := repo.FindByCode(ctx, tt.code)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, coupon)
			}
		})
	}
}
