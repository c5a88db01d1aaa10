package service

import (
	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/internal/notify"
	"github.com/mkostin/shardstore/internal/paypal"
	"github.com/mkostin/shardstore/internal/pg"
	"github.com/mkostin/shardstore/internal/repo"
	authservice "github.com/mkostin/shardstore/internal/service/authservice"
	cashbackservice "github.com/mkostin/shardstore/internal/service/cashbackservice"
	checkoutservice "github.com/mkostin/shardstore/internal/service/checkoutservice"
	ipnservice "github.com/mkostin/shardstore/internal/service/ipnservice"
	settingsservice "github.com/mkostin/shardstore/internal/service/settingsservice"
	pkgauth "github.com/mkostin/shardstore/pkg/auth"
	"github.com/mkostin/shardstore/pkg/clients"
)

type Services struct {
	AuthService     *authservice.Service
	CheckoutService *checkoutservice.Service
	CashbackService *cashbackservice.Service
	IPNService      *ipnservice.Service
	SettingsService *settingsservice.Service
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager) *Services {
	httpClient := clients.NewHTTPClient()

	settingsService := settingsservice.New(repo.SettingsRepo)
	cashbackService := cashbackservice.New(repo.CashbackRepo, repo.OrderRepo, txManager)
	checkoutService := checkoutservice.New(repo.OrderRepo, repo.CouponRepo, repo.UserRepo,
		cashbackService, settingsService, txManager, cfg)
	authService := authservice.New(repo.UserRepo, cashbackService, &pkgauth.HashService{}, &pkgauth.JWTService{})

	verifier := paypal.New(cfg, httpClient)
	notifier := notify.New(cfg, httpClient)
	ipnService := ipnservice.New(repo.OrderRepo, repo.UserRepo, repo.WebhookRepo,
		verifier, cashbackService, notifier, settingsService, txManager)

	return &Services{
		AuthService:     authService,
		CheckoutService: checkoutService,
		CashbackService: cashbackService,
		IPNService:      ipnService,
		SettingsService: settingsService,
	}
}
