package handler

import (
	"time"

	instrumentapp "github.com/gestion/backend/internal/application/instrument"
	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstrumentHandler handles negotiable instrument API endpoints
type InstrumentHandler struct {
	BaseHandler
	service *instrumentapp.Service
}

// NewInstrumentHandler creates a new InstrumentHandler
func NewInstrumentHandler(service *instrumentapp.Service) *InstrumentHandler {
	return &InstrumentHandler{
		service: service,
	}
}

// CreateInstrumentRequest represents a request to record a received instrument
type CreateInstrumentRequest struct {
	Number      string `json:"number" binding:"required"`
	BankName    string `json:"bank_name" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=PHYSICAL ELECTRONIC"`
	IssueDate   string `json:"issue_date" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Beneficiary string `json:"beneficiary"`
	DrawerName  string `json:"drawer_name" binding:"required"`
}

// AmendInstrumentRequest represents a request to correct an in-portfolio instrument
type AmendInstrumentRequest struct {
	Number      string `json:"number" binding:"required"`
	BankName    string `json:"bank_name" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=PHYSICAL ELECTRONIC"`
	IssueDate   string `json:"issue_date" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Beneficiary string `json:"beneficiary"`
	DrawerName  string `json:"drawer_name" binding:"required"`
}

// DepositInstrumentRequest represents a request to place an instrument in clearing
type DepositInstrumentRequest struct {
	AccountID   string `json:"account_id" binding:"required,uuid"`
	DepositDate string `json:"deposit_date" binding:"required"`
}

// EndorseInstrumentRequest represents a request to endorse an instrument to a third party
type EndorseInstrumentRequest struct {
	Endorsee        string `json:"endorsee" binding:"required"`
	EndorsementDate string `json:"endorsement_date" binding:"required"`
}

// RejectInstrumentRequest represents a request to record a bank rejection
type RejectInstrumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListInstrumentsRequest represents instrument list query parameters
type ListInstrumentsRequest struct {
	dto.ListRequest
	Status    string `form:"status" binding:"omitempty,oneof=IN_PORTFOLIO DEPOSITED COLLECTED ENDORSED SOLD REJECTED VOID"`
	Kind      string `form:"kind" binding:"omitempty,oneof=PHYSICAL ELECTRONIC"`
	BankName  string `form:"bank_name"`
	LotID     string `form:"lot_id" binding:"omitempty,uuid"`
	DueBefore string `form:"due_before"`
	DueAfter  string `form:"due_after"`
	AmountMin string `form:"amount_min"`
	AmountMax string `form:"amount_max"`
}

// Create records a newly received instrument in the portfolio
func (h *InstrumentHandler) Create(c *gin.Context) {
	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	appReq, err := h.toCreateRequest(actorID, req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inst, err := h.service.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inst)
}

// Get retrieves an instrument by ID
func (h *InstrumentHandler) Get(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inst, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// List retrieves instruments with filtering and pagination
func (h *InstrumentHandler) List(c *gin.Context) {
	var req ListInstrumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.ApplyDefaults()

	filter, err := h.toFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Summary returns instrument counts and totals grouped by status
func (h *InstrumentHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Amend replaces the details of an in-portfolio instrument
func (h *InstrumentHandler) Amend(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req AmendInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	appReq, err := h.toAmendRequest(actorID, req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inst, err := h.service.Amend(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// Deposit places an instrument in clearing at a treasury account
func (h *InstrumentHandler) Deposit(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req DepositInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account_id format")
		return
	}

	depositDate, err := parseDate(req.DepositDate)
	if err != nil {
		h.BadRequest(c, "Invalid deposit_date format, expected YYYY-MM-DD")
		return
	}

	inst, err := h.service.Deposit(c.Request.Context(), id, instrumentapp.DepositRequest{
		ActorID:     actorID,
		AccountID:   accountID,
		DepositDate: depositDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// Collect confirms realized funds for a deposited instrument
func (h *InstrumentHandler) Collect(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inst, err := h.service.Collect(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// Endorse passes control of an instrument to a third party
func (h *InstrumentHandler) Endorse(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req EndorseInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	endorsementDate, err := parseDate(req.EndorsementDate)
	if err != nil {
		h.BadRequest(c, "Invalid endorsement_date format, expected YYYY-MM-DD")
		return
	}

	inst, err := h.service.Endorse(c.Request.Context(), id, instrumentapp.EndorseRequest{
		ActorID:         actorID,
		Endorsee:        req.Endorsee,
		EndorsementDate: endorsementDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// Reject records the bank's permanent return of a deposited instrument
func (h *InstrumentHandler) Reject(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req RejectInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	inst, err := h.service.Reject(c.Request.Context(), id, instrumentapp.RejectRequest{
		ActorID: actorID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

// Void tombstones an in-portfolio instrument
func (h *InstrumentHandler) Void(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inst, err := h.service.Void(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inst)
}

func (h *InstrumentHandler) toCreateRequest(actorID uuid.UUID, req CreateInstrumentRequest) (instrumentapp.CreateInstrumentRequest, error) {
	details, err := parseInstrumentDetails(req.IssueDate, req.DueDate, req.Amount)
	if err != nil {
		return instrumentapp.CreateInstrumentRequest{}, err
	}

	return instrumentapp.CreateInstrumentRequest{
		ActorID:     actorID,
		Number:      req.Number,
		BankName:    req.BankName,
		Kind:        instrument.Kind(req.Kind),
		IssueDate:   details.issueDate,
		DueDate:     details.dueDate,
		Amount:      details.amount,
		Beneficiary: req.Beneficiary,
		DrawerName:  req.DrawerName,
	}, nil
}

func (h *InstrumentHandler) toAmendRequest(actorID uuid.UUID, req AmendInstrumentRequest) (instrumentapp.AmendInstrumentRequest, error) {
	details, err := parseInstrumentDetails(req.IssueDate, req.DueDate, req.Amount)
	if err != nil {
		return instrumentapp.AmendInstrumentRequest{}, err
	}

	return instrumentapp.AmendInstrumentRequest{
		ActorID:     actorID,
		Number:      req.Number,
		BankName:    req.BankName,
		Kind:        instrument.Kind(req.Kind),
		IssueDate:   details.issueDate,
		DueDate:     details.dueDate,
		Amount:      details.amount,
		Beneficiary: req.Beneficiary,
		DrawerName:  req.DrawerName,
	}, nil
}

func (h *InstrumentHandler) toFilter(req ListInstrumentsRequest) (instrument.Filter, error) {
	filter := instrument.Filter{
		Filter:   toSharedFilter(req.ListRequest),
		BankName: req.BankName,
	}

	if req.Status != "" {
		status := instrument.Status(req.Status)
		filter.Status = &status
	}
	if req.Kind != "" {
		kind := instrument.Kind(req.Kind)
		filter.Kind = &kind
	}
	if req.LotID != "" {
		lotID, err := uuid.Parse(req.LotID)
		if err != nil {
			return instrument.Filter{}, errInvalidField("lot_id")
		}
		filter.LotID = &lotID
	}
	if req.DueBefore != "" {
		t, err := parseDate(req.DueBefore)
		if err != nil {
			return instrument.Filter{}, errInvalidField("due_before")
		}
		filter.DueBefore = &t
	}
	if req.DueAfter != "" {
		t, err := parseDate(req.DueAfter)
		if err != nil {
			return instrument.Filter{}, errInvalidField("due_after")
		}
		filter.DueAfter = &t
	}
	if req.AmountMin != "" {
		d, err := decimal.NewFromString(req.AmountMin)
		if err != nil {
			return instrument.Filter{}, errInvalidField("amount_min")
		}
		filter.AmountMin = &d
	}
	if req.AmountMax != "" {
		d, err := decimal.NewFromString(req.AmountMax)
		if err != nil {
			return instrument.Filter{}, errInvalidField("amount_max")
		}
		filter.AmountMax = &d
	}

	return filter, nil
}

type instrumentDetails struct {
	issueDate time.Time
	dueDate   time.Time
	amount    decimal.Decimal
}

func parseInstrumentDetails(issueDate, dueDate, amount string) (instrumentDetails, error) {
	issued, err := parseDate(issueDate)
	if err != nil {
		return instrumentDetails{}, errInvalidField("issue_date")
	}
	due, err := parseDate(dueDate)
	if err != nil {
		return instrumentDetails{}, errInvalidField("due_date")
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return instrumentDetails{}, errInvalidField("amount")
	}
	return instrumentDetails{issueDate: issued, dueDate: due, amount: amt}, nil
}
