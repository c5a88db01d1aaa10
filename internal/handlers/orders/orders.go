package orders

import (
	"context"
	"net/http"
	"time"

	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/internal/dto"
	"github.com/mkostin/shardstore/pkg/auth"
	"github.com/mkostin/shardstore/pkg/utils"
)

type Service interface {
	GetOrders(ctx context.Context, userID int) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GetOrders godoc
//
//	@Summary		Get orders list for user
//	@Description	Retrieve the authorized user's orders with totals and payment state, newest first
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.GetOrdersResponseDTO
//	@Failure		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	orders, err := h.orderService.GetOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(orders) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	var response []dto.GetOrdersResponseDTO
	for _, order := range orders {
		response = append(response, dto.GetOrdersResponseDTO{
			ID:            order.ID,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Subtotal:      order.Subtotal.StringFixed(2),
			TotalAmount:   order.TotalAmount.StringFixed(2),
			DeliveryShard: order.DeliveryShard,
			CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
