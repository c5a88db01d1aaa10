package cashback

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/dto"
	"github.com/mkostin/shardstore/pkg/auth"
	"github.com/mkostin/shardstore/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, userID int) (*domain.CashbackBalance, error)
	Available(ctx context.Context, userID int, excludeOrderID string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, userID int) ([]domain.CashbackEntry, error)
}

type CashbackHandler struct {
	cashbackService Service
}

func New(cashbackService Service) *CashbackHandler {
	return &CashbackHandler{
		cashbackService: cashbackService,
	}
}

// GetBalance godoc
//
//	@Summary		Get cashback balance
//	@Description	Retrieve the cashback ledger balance and the part still available after pending-order holds.
//	@Tags			Cashback
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.CashbackBalanceDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/cashback [get]
func (h *CashbackHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.cashbackService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	available, err := h.cashbackService.Available(r.Context(), userID, "")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := dto.CashbackBalanceDTO{Available: available.InexactFloat64()}
	if balance != nil {
		resp.Balance = balance.Balance.InexactFloat64()
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetHistory godoc
//
//	@Summary		Get cashback history
//	@Description	Get the audit trail of cashback credits and debits for the authenticated user, newest first.
//	@Tags			Cashback
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.CashbackEntryDTO
//	@Success		204	{object}	utils.Response	"No entries"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/cashback/history [get]
func (h *CashbackHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	entries, err := h.cashbackService.GetHistory(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch cashback history")
		return
	}

	if len(entries) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No cashback entries")
		return
	}

	response := make([]dto.CashbackEntryDTO, len(entries))
	for i, entry := range entries {
		response[i] = dto.CashbackEntryDTO{
			Amount:      entry.Amount.InexactFloat64(),
			Kind:        entry.Kind,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		}
		if entry.OrderID != nil {
			response[i].OrderID = *entry.OrderID
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
