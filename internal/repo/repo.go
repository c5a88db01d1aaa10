package repo

import (
	"github.com/mkostin/shardstore/internal/pg"
	cashbackrepo "github.com/mkostin/shardstore/internal/repo/cashback-repo"
	couponrepo "github.com/mkostin/shardstore/internal/repo/coupon-repo"
	orderrepo "github.com/mkostin/shardstore/internal/repo/order-repo"
	settingsrepo "github.com/mkostin/shardstore/internal/repo/settings-repo"
	userrepo "github.com/mkostin/shardstore/internal/repo/user-repo"
	webhookrepo "github.com/mkostin/shardstore/internal/repo/webhook-repo"
)

type Repositories struct {
	UserRepo     *userrepo.Repository
	OrderRepo    *orderrepo.Repository
	CouponRepo   *couponrepo.Repository
	CashbackRepo *cashbackrepo.Repository
	WebhookRepo  *webhookrepo.Repository
	SettingsRepo *settingsrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:     userrepo.New(conn),
		OrderRepo:    orderrepo.New(conn, txManager),
		CouponRepo:   couponrepo.New(conn),
		CashbackRepo: cashbackrepo.New(conn, txManager),
		WebhookRepo:  webhookrepo.New(conn),
		SettingsRepo: settingsrepo.New(conn),
	}
}
