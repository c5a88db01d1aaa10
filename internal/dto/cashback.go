package dto

import "time"

type CashbackBalanceDTO struct {
	Balance   float64 `json:"balance" example:"20.5"`
	Available float64 `json:"available" example:"12.5"`
}

type CashbackEntryDTO struct {
	Amount      float64   `json:"amount" example:"4.25"`
	Kind        string    `json:"kind" example:"credit"`
	Description string    `json:"description"`
	OrderID     string    `json:"orderId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
