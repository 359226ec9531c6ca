package handler

import (
	instrumentapp "github.com/gestion/backend/internal/application/instrument"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotHandler handles instrument sale and lot settlement API endpoints
type LotHandler struct {
	BaseHandler
	service *instrumentapp.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(service *instrumentapp.LotService) *LotHandler {
	return &LotHandler{
		service: service,
	}
}

// PreviewSettlementRequest represents a request for settlement figures without a sale
type PreviewSettlementRequest struct {
	GrossAmount  string `json:"gross_amount" binding:"required"`
	DiscountRate string `json:"discount_rate" binding:"required"`
	TaxRate      string `json:"tax_rate" binding:"required"`
}

// SellInstrumentRequest represents a request to sell one instrument on its own
type SellInstrumentRequest struct {
	Buyer        string `json:"buyer" binding:"required"`
	DiscountRate string `json:"discount_rate" binding:"required"`
	TaxRate      string `json:"tax_rate" binding:"required"`
}

// SellBatchRequest represents a request to sell a set of instruments as one lot
type SellBatchRequest struct {
	InstrumentIDs []string `json:"instrument_ids" binding:"required,min=1,dive,uuid"`
	Buyer         string   `json:"buyer" binding:"required"`
	DiscountRate  string   `json:"discount_rate" binding:"required"`
	TaxRate       string   `json:"tax_rate" binding:"required"`
}

// CreditLotRequest represents a request to post a lot's net proceeds to an account
type CreditLotRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// ListLotsRequest represents lot list query parameters
type ListLotsRequest struct {
	dto.ListRequest
	OutstandingOnly bool `form:"outstanding_only"`
}

// PreviewSettlement computes discount, tax and net figures for a hypothetical sale
func (h *LotHandler) PreviewSettlement(c *gin.Context) {
	var req PreviewSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		h.BadRequest(c, "Invalid gross_amount format")
		return
	}

	rates, err := parseRates(req.DiscountRate, req.TaxRate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settlement, err := h.service.PreviewSettlement(instrumentapp.PreviewSettlementRequest{
		GrossAmount:  gross,
		DiscountRate: rates.discount,
		TaxRate:      rates.tax,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settlement)
}

// SellSolo sells a single instrument at a discount
func (h *LotHandler) SellSolo(c *gin.Context) {
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

	var req SellInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	rates, err := parseRates(req.DiscountRate, req.TaxRate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SellSolo(c.Request.Context(), id, instrumentapp.SellBatchRequest{
		ActorID:      actorID,
		Buyer:        req.Buyer,
		DiscountRate: rates.discount,
		TaxRate:      rates.tax,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SellBatch sells a set of in-portfolio instruments as one lot
func (h *LotHandler) SellBatch(c *gin.Context) {
	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SellBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	rates, err := parseRates(req.DiscountRate, req.TaxRate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	instrumentIDs := make([]uuid.UUID, 0, len(req.InstrumentIDs))
	for _, raw := range req.InstrumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid instrument ID: "+raw)
			return
		}
		instrumentIDs = append(instrumentIDs, id)
	}

	result, err := h.service.SellBatch(c.Request.Context(), instrumentapp.SellBatchRequest{
		ActorID:       actorID,
		InstrumentIDs: instrumentIDs,
		Buyer:         req.Buyer,
		DiscountRate:  rates.discount,
		TaxRate:       rates.tax,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CreditLot posts a lot's summed net proceeds to a treasury account
func (h *LotHandler) CreditLot(c *gin.Context) {
	lotID, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreditLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account_id format")
		return
	}

	result, err := h.service.CreditLot(c.Request.Context(), instrumentapp.CreditLotRequest{
		ActorID:   actorID,
		LotID:     lotID,
		AccountID: accountID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListLots retrieves sale lots with pagination
func (h *LotHandler) ListLots(c *gin.Context) {
	var req ListLotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.ApplyDefaults()

	result, err := h.service.ListLots(c.Request.Context(), toSharedFilter(req.ListRequest), req.OutstandingOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

type saleRates struct {
	discount decimal.Decimal
	tax      decimal.Decimal
}

func parseRates(discountRate, taxRate string) (saleRates, error) {
	discount, err := decimal.NewFromString(discountRate)
	if err != nil {
		return saleRates{}, errInvalidField("discount_rate")
	}
	tax, err := decimal.NewFromString(taxRate)
	if err != nil {
		return saleRates{}, errInvalidField("tax_rate")
	}
	return saleRates{discount: discount, tax: tax}, nil
}
