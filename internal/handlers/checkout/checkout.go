package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/dto"
	checkoutservice "github.com/mkostin/shardstore/internal/service/checkoutservice"
	"github.com/mkostin/shardstore/pkg/auth"
	"github.com/mkostin/shardstore/pkg/utils"
)

type Service interface {
	Checkout(ctx context.Context, userID int, in checkoutservice.Input) (*checkoutservice.Result, error)
	GetOrders(ctx context.Context, userID int) ([]domain.Order, error)
}

type CheckoutHandler struct {
	checkoutService Service
}

func New(checkoutService Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Checkout godoc
//
//	@Summary		Create or update a pending order
//	@Description	Compute stacked discounts for the cart, persist a pending order and return the payment form payload.
//	@Tags			Checkout
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CheckoutRequestDTO	true	"Cart and discount selection"
//	@Success		200		{object}	dto.CheckoutResponseDTO
//	@Failure		400		{object}	dto.ErrorResponseDTO	"Invalid cart or insufficient cashback"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		404		{object}	dto.ErrorResponseDTO	"Unknown coupon or order"
//	@Failure		409		{object}	dto.ErrorResponseDTO	"Order no longer editable"
//	@Failure		500		{object}	dto.ErrorResponseDTO	"Internal server error"
//	@Router			/api/user/checkout [post]
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	in, validationErr := buildInput(&req)
	if validationErr != "" {
		respondError(w, http.StatusBadRequest, "invalid request", validationErr)
		return
	}

	result, err := h.checkoutService.Checkout(r.Context(), userID, *in)
	if err != nil {
		switch {
		case errors.Is(err, checkoutservice.ErrInsufficientBalance):
			respondError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, checkoutservice.ErrCouponNotFound),
			errors.Is(err, checkoutservice.ErrOrderNotFound),
			errors.Is(err, checkoutservice.ErrUserNotFound):
			respondError(w, http.StatusNotFound, err.Error(), "")
		case errors.Is(err, checkoutservice.ErrOrderNotEditable):
			respondError(w, http.StatusConflict, err.Error(), "")
		default:
			respondError(w, http.StatusInternalServerError, "internal server error", "")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.CheckoutResponseDTO{
		Success: true,
		OrderID: result.Order.ID,
		PayPalFormData: dto.PayPalFormDataDTO{
			Business:     result.Form.Business,
			ItemName:     result.Form.ItemName,
			Amount:       result.Form.Amount,
			CurrencyCode: result.Form.CurrencyCode,
			Return:       result.Form.Return,
			CancelReturn: result.Form.CancelReturn,
			NotifyURL:    result.Form.NotifyURL,
			Custom:       result.Form.Custom,
			NoShipping:   result.Form.NoShipping,
			NoNote:       result.Form.NoNote,
			Charset:      result.Form.Charset,
		},
		PayPalURL: result.PayPalURL,
	})
}

// buildInput validates the request and maps it onto service input.
// Every cart line must carry id, name, price and quantity, and a shard
// must be selected, or the whole request is rejected.
func buildInput(req *dto.CheckoutRequestDTO) (*checkoutservice.Input, string) {
	if len(req.CartItems) == 0 {
		return nil, "cart is empty"
	}
	if req.SelectedShard == "" {
		return nil, "selectedShard is required"
	}
	if req.CashbackToUse.IsNegative() {
		return nil, "cashbackToUse must not be negative"
	}

	lines := make([]checkoutservice.CartLine, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		if item.ID == "" || item.Name == "" || item.Price == nil || item.Quantity <= 0 {
			return nil, "every cart item needs id, name, price and quantity"
		}
		if item.Price.IsNegative() {
			return nil, "item price must not be negative"
		}
		lines = append(lines, checkoutservice.CartLine{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: *item.Price,
			Quantity:  item.Quantity,
			Details:   item.Details,
		})
	}

	return &checkoutservice.Input{
		Lines:           lines,
		Shard:           req.SelectedShard,
		CouponCode:      req.CouponCode,
		GiftID:          req.GiftID,
		CashbackToUse:   req.CashbackToUse,
		ExistingOrderID: req.ExistingOrderID,
	}, ""
}

func respondError(w http.ResponseWriter, code int, message, details string) {
	utils.RespondWithJSON(w, code, dto.ErrorResponseDTO{Error: message, Details: details})
}
