package settingsservice

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	service := New(repo)
	defer ctrl.Finish()
	return service, repo
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	valid := map[string]string{
		KeyBusinessEmail:          "store@shardstore.example",
		KeyCashbackPercent:        "5",
		KeyPremiumDiscountPercent: "10.5",
	}

	tests := []struct {
		name        string
		values      map[string]string
		repoErr     error
		expectErr   bool
		checkResult func(t *testing.T, s *Snapshot)
	}{
		{
			name:   "All settings present",
			values: valid,
			checkResult: func(t *testing.T, s *Snapshot) {
				assert.Equal(t, "store@shardstore.example", s.BusinessEmail)
				assert.True(t, s.CashbackPercent.Equal(decimal.NewFromInt(5)))
				assert.True(t, s.PremiumDiscountPercent.Equal(decimal.NewFromFloat(10.5)))
			},
		},
		{
			name: "Missing business email",
			values: map[string]string{
				KeyCashbackPercent:        "5",
				KeyPremiumDiscountPercent: "10",
			},
			expectErr: true,
		},
		{
			name: "Missing cashback percentage",
			values: map[string]string{
				KeyBusinessEmail:          "store@shardstore.example",
				KeyPremiumDiscountPercent: "10",
			},
			expectErr: true,
		},
		{
			name: "Malformed percentage",
			values: map[string]string{
				KeyBusinessEmail:          "store@shardstore.example",
				KeyCashbackPercent:        "five",
				KeyPremiumDiscountPercent: "10",
			},
			expectErr: true,
		},
		{
			name: "Negative percentage",
			values: map[string]string{
				KeyBusinessEmail:          "store@shardstore.example",
				KeyCashbackPercent:        "-5",
				KeyPremiumDiscountPercent: "10",
			},
			expectErr: true,
		},
		{
			name:      "Repo error",
			repoErr:   errors.New("database error"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := NewMock(t)
			repo.EXPECT().GetAll(ctx).Return(tt.values, tt.repoErr)

			snapshot, err := service.Snapshot(ctx)
			if tt.expectErr {
				assert.Error(t, err)
				if tt.repoErr == nil {
					assert.ErrorIs(t, err, ErrMissingSetting)
				}
			} else {
				assert.NoError(t, err)
				tt.checkResult(t, snapshot)
			}
		})
	}
}
