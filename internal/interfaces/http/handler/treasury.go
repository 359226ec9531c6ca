package handler

import (
	treasuryapp "github.com/gestion/backend/internal/application/treasury"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TreasuryHandler handles treasury account and movement API endpoints
type TreasuryHandler struct {
	BaseHandler
	service *treasuryapp.AccountService
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(service *treasuryapp.AccountService) *TreasuryHandler {
	return &TreasuryHandler{
		service: service,
	}
}

// CreateAccountRequest represents a request to open a treasury account
type CreateAccountRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required,oneof=CASH BANK"`
}

// ListMovementsRequest represents movement list query parameters
type ListMovementsRequest struct {
	dto.ListRequest
	AccountID    string `form:"account_id" binding:"omitempty,uuid"`
	Direction    string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	SourceType   string `form:"source_type"`
	PostedAfter  string `form:"posted_after"`
	PostedBefore string `form:"posted_before"`
}

// Create opens a new treasury account
func (h *TreasuryHandler) Create(c *gin.Context) {
	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	account, err := h.service.Create(c.Request.Context(), treasuryapp.CreateAccountRequest{
		ActorID: actorID,
		Code:    req.Code,
		Name:    req.Name,
		Type:    treasury.AccountType(req.Type),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// Get retrieves an account by ID
func (h *TreasuryHandler) Get(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	account, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// List retrieves accounts with pagination
func (h *TreasuryHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.ApplyDefaults()

	result, err := h.service.List(c.Request.Context(), toSharedFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Activate reopens a deactivated account for postings
func (h *TreasuryHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate closes an account to new postings
func (h *TreasuryHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *TreasuryHandler) setActive(c *gin.Context, active bool) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	account, err := h.service.SetActive(c.Request.Context(), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// ListMovements retrieves account movements with filtering and pagination
func (h *TreasuryHandler) ListMovements(c *gin.Context) {
	var req ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.ApplyDefaults()

	filter := treasury.MovementFilter{
		Filter:     toSharedFilter(req.ListRequest),
		SourceType: req.SourceType,
	}

	if req.AccountID != "" {
		accountID, err := uuid.Parse(req.AccountID)
		if err != nil {
			h.BadRequest(c, "Invalid account_id format")
			return
		}
		filter.AccountID = accountID
	}
	if req.Direction != "" {
		direction := treasury.Direction(req.Direction)
		filter.Direction = &direction
	}
	if req.PostedAfter != "" {
		t, err := parseDate(req.PostedAfter)
		if err != nil {
			h.BadRequest(c, "Invalid posted_after format, expected YYYY-MM-DD")
			return
		}
		filter.PostedAfter = &t
	}
	if req.PostedBefore != "" {
		t, err := parseDate(req.PostedBefore)
		if err != nil {
			h.BadRequest(c, "Invalid posted_before format, expected YYYY-MM-DD")
			return
		}
		filter.PostedBefore = &t
	}

	result, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
