package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
)

// ProposalHandler serves bid submission and management endpoints.
type ProposalHandler struct {
	proposals *service.ProposalService
}

func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

type createProposalRequest struct {
	Price          float64  `json:"price" binding:"required"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Message        *string  `json:"message"`
}

func (h *ProposalHandler) Create(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req createProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.CreateProposal(c.Request.Context(), jobID, contractorID, role, service.CreateProposalInput{
		Price:          req.Price,
		EstimatedHours: req.EstimatedHours,
		Message:        req.Message,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

func (h *ProposalHandler) Withdraw(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposalID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.WithdrawProposal(c.Request.Context(), proposalID, contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListForJob returns every bid on a job. Only the job owner may look.
func (h *ProposalHandler) ListForJob(c *gin.Context) {
	customerID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposals, err := h.proposals.ListProposalsForJob(c.Request.Context(), jobID, customerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": len(proposals)})
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	contractorID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposals, err := h.proposals.ListProposalsByContractor(c.Request.Context(), contractorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": len(proposals)})
}
