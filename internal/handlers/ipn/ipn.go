package ipn

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/dto"
	ipnservice "github.com/mkostin/shardstore/internal/service/ipnservice"
	"github.com/mkostin/shardstore/pkg/utils"
)

type Service interface {
	HandleNotification(ctx context.Context, rawBody string) error
	Replay(ctx context.Context, eventID int) error
}

type IPNHandler struct {
	ipnService Service
}

func New(ipnService Service) *IPNHandler {
	return &IPNHandler{
		ipnService: ipnService,
	}
}

// HandleIPN godoc
//
//	@Summary		Payment provider notification endpoint
//	@Description	Receive an IPN callback, verify it and reconcile it against the matching order. Called by the payment provider, not by users.
//	@Tags			Payment
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Success		200	{object}	dto.IPNAckDTO
//	@Failure		400	{object}	dto.ErrorResponseDTO	"Unverified, mismatched or malformed notification"
//	@Failure		404	{object}	dto.ErrorResponseDTO	"No order for the correlation token"
//	@Failure		500	{object}	dto.ErrorResponseDTO	"Internal server error"
//	@Router			/api/payment/ipn [post]
func (h *IPNHandler) HandleIPN(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := h.ipnService.HandleNotification(r.Context(), string(body)); err != nil {
		respondProcessingError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.IPNAckDTO{Success: true})
}

// Replay godoc
//
//	@Summary		Replay a stored payment notification
//	@Description	Re-run a stored webhook event through the reconciliation pipeline. Operator recovery tool for notifications that failed on our side.
//	@Tags			Payment
//	@Security		BearerAuth
//	@Produce		json
//	@Param			eventID	path		int	true	"Stored webhook event id"
//	@Success		200		{object}	dto.IPNAckDTO
//	@Failure		400		{object}	dto.ErrorResponseDTO	"Event fails a reconciliation gate"
//	@Failure		404		{object}	dto.ErrorResponseDTO	"Unknown event"
//	@Failure		500		{object}	dto.ErrorResponseDTO	"Internal server error"
//	@Router			/api/user/ipn/{eventID}/replay [post]
func (h *IPNHandler) Replay(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.ipnService.Replay(r.Context(), eventID); err != nil {
		respondProcessingError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.IPNAckDTO{Success: true})
}

func respondProcessingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ipnservice.ErrMalformedPayload),
		errors.Is(err, ipnservice.ErrNotVerified),
		errors.Is(err, ipnservice.ErrReceiverMismatch),
		errors.Is(err, ipnservice.ErrMissingOrderRef),
		errors.Is(err, ipnservice.ErrAmountMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ipnservice.ErrOrderNotFound),
		errors.Is(err, ipnservice.ErrEventNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("IPN processing failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondError(w http.ResponseWriter, code int, message string) {
	utils.RespondWithJSON(w, code, dto.ErrorResponseDTO{Error: message})
}
