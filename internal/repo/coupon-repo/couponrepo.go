package couponrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
        SELECT id, code, discount_type, value, minimum_amount, is_active, starts_at, expires_at
        FROM coupons
        WHERE code = $1
    `
	row := r.db.QueryRow(ctx, query, code)

	var coupon domain.Coupon
	err := row.Scan(&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.Value,
		&coupon.MinimumAmount, &coupon.IsActive, &coupon.StartsAt, &coupon.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find coupon", zap.Error(err))
		return nil, err
	}
	return &coupon, nil
}
