package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mkostin/shardstore/internal/pg"
	cashbackrepo "github.com/mkostin/shardstore/internal/repo/cashback-repo"
	couponrepo "github.com/mkostin/shardstore/internal/repo/coupon-repo"
	orderrepo "github.com/mkostin/shardstore/internal/repo/order-repo"
	settingsrepo "github.com/mkostin/shardstore/internal/repo/settings-repo"
	userrepo "github.com/mkostin/shardstore/internal/repo/user-repo"
	webhookrepo "github.com/mkostin/shardstore/internal/repo/webhook-repo"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	mockTxManager := pg.NewMockTXManager(ctrl)
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.OrderRepo)
	assert.NotNil(t, repo.CouponRepo)
	assert.NotNil(t, repo.CashbackRepo)
	assert.NotNil(t, repo.WebhookRepo)
	assert.NotNil(t, repo.SettingsRepo)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &orderrepo.Repository{}, repo.OrderRepo)
	assert.IsType(t, &couponrepo.Repository{}, repo.CouponRepo)
	assert.IsType(t, &cashbackrepo.Repository{}, repo.CashbackRepo)
	assert.IsType(t, &webhookrepo.Repository{}, repo.WebhookRepo)
	assert.IsType(t, &settingsrepo.Repository{}, repo.SettingsRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
