package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
)

// WalletHandler serves contractor earnings: the wallet summary, payout
// history and settlement bookkeeping.
type WalletHandler struct {
	payouts *service.PayoutService
}

func NewWalletHandler(payouts *service.PayoutService) *WalletHandler {
	return &WalletHandler{payouts: payouts}
}

func (h *WalletHandler) Summary(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.payouts.GetWalletSummary(c.Request.Context(), contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *WalletHandler) ListPayouts(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	payouts, err := h.payouts.ListPayouts(c.Request.Context(), contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts, "total": len(payouts)})
}

func (h *WalletHandler) GetForJob(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payouts.GetPayoutForJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if payout.ContractorID != contractorID {
		_ = c.Error(apperror.ErrNotOwner)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// Queue moves a pending payout into the transfer queue. Idempotent for
// payouts already queued or paid.
func (h *WalletHandler) Queue(c *gin.Context) {
	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payouts.QueueForTransfer(c.Request.Context(), payoutID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

type settlementRequest struct {
	ProviderRef   string `json:"provider_ref"`
	FailureReason string `json:"failure_reason"`
}

// Settle records the outcome of an external transfer attempt. Admin only.
func (h *WalletHandler) Settle(c *gin.Context) {
	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req settlementRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payouts.RecordSettlement(c.Request.Context(), payoutID, req.ProviderRef, req.FailureReason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payout)
}
