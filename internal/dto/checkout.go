package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CartItemDTO struct {
	ID       string           `json:"id" example:"rune-pack-10"`
	Name     string           `json:"name" example:"Rune Pack x10"`
	Price    *decimal.Decimal `json:"price" example:"9.99"`
	Quantity int              `json:"quantity" example:"2"`
	Details  json.RawMessage  `json:"details,omitempty"`
}

type CheckoutRequestDTO struct {
	CartItems       []CartItemDTO   `json:"cartItems"`
	CashbackToUse   decimal.Decimal `json:"cashbackToUse"`
	SelectedShard   string          `json:"selectedShard" example:"europa"`
	CouponCode      string          `json:"couponCode,omitempty" example:"fiveoff"`
	GiftID          string          `json:"giftId,omitempty"`
	ExistingOrderID string          `json:"existingOrderId,omitempty"`
}

type PayPalFormDataDTO struct {
	Business     string `json:"business"`
	ItemName     string `json:"item_name"`
	Amount       string `json:"amount" example:"85.00"`
	CurrencyCode string `json:"currency_code" example:"USD"`
	Return       string `json:"return"`
	CancelReturn string `json:"cancel_return"`
	NotifyURL    string `json:"notify_url"`
	Custom       string `json:"custom"`
	NoShipping   string `json:"no_shipping"`
	NoNote       string `json:"no_note"`
	Charset      string `json:"charset"`
}

type CheckoutResponseDTO struct {
	Success        bool              `json:"success"`
	OrderID        string            `json:"orderId"`
	PayPalFormData PayPalFormDataDTO `json:"paypalFormData"`
	PayPalURL      string            `json:"paypalUrl"`
}

type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
