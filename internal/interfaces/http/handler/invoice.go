package handler

import (
	invoiceapp "github.com/gestion/backend/internal/application/invoice"
	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles vendor invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	service *invoiceapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *invoiceapp.Service) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
	}
}

// InvoiceAmountsRequest carries the tax-decomposed figures of a vendor document
type InvoiceAmountsRequest struct {
	NetAmount                string `json:"net_amount" binding:"required"`
	VAT21                    string `json:"vat_21"`
	VAT105                   string `json:"vat_10_5"`
	VAT27                    string `json:"vat_27"`
	ExemptAmount             string `json:"exempt_amount"`
	PerceptionsVAT           string `json:"perceptions_vat"`
	PerceptionsGrossReceipts string `json:"perceptions_gross_receipts"`
	OtherTaxes               string `json:"other_taxes"`

	WithholdingIncomeTax      string `json:"withholding_income_tax"`
	WithholdingVAT            string `json:"withholding_vat"`
	WithholdingGrossReceipts  string `json:"withholding_gross_receipts"`
	WithholdingSocialSecurity string `json:"withholding_social_security"`
}

// InvoiceClassificationRequest carries the accounting classification of a document
type InvoiceClassificationRequest struct {
	LedgerAccountCode string `json:"ledger_account_code"`
	CostCenterCode    string `json:"cost_center_code"`
	ProjectCode       string `json:"project_code"`
}

// CreateInvoiceRequest represents a request to record a vendor document
type CreateInvoiceRequest struct {
	DocumentType   string                       `json:"document_type" binding:"required,oneof=INVOICE_A INVOICE_B INVOICE_C CREDIT_NOTE DEBIT_NOTE RECEIPT"`
	PointOfSale    string                       `json:"point_of_sale" binding:"required"`
	DocumentNumber string                       `json:"document_number" binding:"required"`
	SupplierName   string                       `json:"supplier_name" binding:"required"`
	SupplierTaxID  string                       `json:"supplier_tax_id"`
	IssueDate      string                       `json:"issue_date" binding:"required"`
	DueDate        string                       `json:"due_date"`
	Amounts        InvoiceAmountsRequest        `json:"amounts" binding:"required"`
	Classification InvoiceClassificationRequest `json:"classification"`
}

// UpdateInvoiceRequest represents a request to replace a pending invoice's figures
type UpdateInvoiceRequest struct {
	Amounts        InvoiceAmountsRequest        `json:"amounts" binding:"required"`
	Classification InvoiceClassificationRequest `json:"classification"`
}

// RegisterPaymentRequest represents a request to register a payment against an invoice
type RegisterPaymentRequest struct {
	Amount       string `json:"amount" binding:"required"`
	PaymentDate  string `json:"payment_date" binding:"required"`
	Method       string `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHECK E_CHECK OTHER"`
	AccountID    string `json:"account_id" binding:"required,uuid"`
	InstrumentID string `json:"instrument_id" binding:"omitempty,uuid"`
	ReceiptRef   string `json:"receipt_ref"`
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	Status       string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID VOID"`
	DocumentType string `form:"document_type" binding:"omitempty,oneof=INVOICE_A INVOICE_B INVOICE_C CREDIT_NOTE DEBIT_NOTE RECEIPT"`
	Supplier     string `form:"supplier"`
	IssuedAfter  string `form:"issued_after"`
	IssuedBefore string `form:"issued_before"`
	OnlyOpen     bool   `form:"only_open"`
}

// Create records a new vendor document in the payment ledger
func (h *InvoiceHandler) Create(c *gin.Context) {
	actorID, err := h.getActorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		h.BadRequest(c, "Invalid issue_date format, expected YYYY-MM-DD")
		return
	}

	appReq := invoiceapp.CreateInvoiceRequest{
		ActorID:        actorID,
		DocumentType:   invoice.DocumentType(req.DocumentType),
		PointOfSale:    req.PointOfSale,
		DocumentNumber: req.DocumentNumber,
		SupplierName:   req.SupplierName,
		SupplierTaxID:  req.SupplierTaxID,
		IssueDate:      issueDate,
		Classification: toClassification(req.Classification),
	}

	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			h.BadRequest(c, "Invalid due_date format, expected YYYY-MM-DD")
			return
		}
		appReq.DueDate = &dueDate
	}

	amounts, err := toAmounts(req.Amounts)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	appReq.Amounts = amounts

	inv, err := h.service.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inv)
}

// Get retrieves an invoice with its payment history
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := h.parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// List retrieves invoices with filtering and pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.ApplyDefaults()

	filter := invoice.Filter{
		Filter:   toSharedFilter(req.ListRequest),
		Supplier: req.Supplier,
		OnlyOpen: req.OnlyOpen,
	}

	if req.Status != "" {
		status := invoice.Status(req.Status)
		filter.Status = &status
	}
	if req.DocumentType != "" {
		docType := invoice.DocumentType(req.DocumentType)
		filter.DocumentType = &docType
	}
	if req.IssuedAfter != "" {
		t, err := parseDate(req.IssuedAfter)
		if err != nil {
			h.BadRequest(c, "Invalid issued_after format, expected YYYY-MM-DD")
			return
		}
		filter.IssuedAfter = &t
	}
	if req.IssuedBefore != "" {
		t, err := parseDate(req.IssuedBefore)
		if err != nil {
			h.BadRequest(c, "Invalid issued_before format, expected YYYY-MM-DD")
			return
		}
		filter.IssuedBefore = &t
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update replaces the figures and classification of a pending invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
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

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	amounts, err := toAmounts(req.Amounts)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.service.Update(c.Request.Context(), id, invoiceapp.UpdateInvoiceRequest{
		ActorID:        actorID,
		Amounts:        amounts,
		Classification: toClassification(req.Classification),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Void annuls an invoice that has no payments
func (h *InvoiceHandler) Void(c *gin.Context) {
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

	inv, err := h.service.Void(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// RegisterPayment appends a payment against an invoice's balance due
func (h *InvoiceHandler) RegisterPayment(c *gin.Context) {
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

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date format, expected YYYY-MM-DD")
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account_id format")
		return
	}

	appReq := invoiceapp.RegisterPaymentRequest{
		ActorID:     actorID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      invoice.PaymentMethod(req.Method),
		AccountID:   accountID,
		ReceiptRef:  req.ReceiptRef,
	}

	if req.InstrumentID != "" {
		instrumentID, err := uuid.Parse(req.InstrumentID)
		if err != nil {
			h.BadRequest(c, "Invalid instrument_id format")
			return
		}
		appReq.InstrumentID = &instrumentID
	}

	result, err := h.service.RegisterPayment(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func toClassification(req InvoiceClassificationRequest) invoice.Classification {
	return invoice.Classification{
		LedgerAccountCode: req.LedgerAccountCode,
		CostCenterCode:    req.CostCenterCode,
		ProjectCode:       req.ProjectCode,
	}
}

func toAmounts(req InvoiceAmountsRequest) (invoice.Amounts, error) {
	var amounts invoice.Amounts
	fields := []struct {
		name  string
		value string
		dest  *decimal.Decimal
	}{
		{"net_amount", req.NetAmount, &amounts.NetAmount},
		{"vat_21", req.VAT21, &amounts.VAT21},
		{"vat_10_5", req.VAT105, &amounts.VAT105},
		{"vat_27", req.VAT27, &amounts.VAT27},
		{"exempt_amount", req.ExemptAmount, &amounts.ExemptAmount},
		{"perceptions_vat", req.PerceptionsVAT, &amounts.PerceptionsVAT},
		{"perceptions_gross_receipts", req.PerceptionsGrossReceipts, &amounts.PerceptionsGrossReceipts},
		{"other_taxes", req.OtherTaxes, &amounts.OtherTaxes},
		{"withholding_income_tax", req.WithholdingIncomeTax, &amounts.WithholdingIncomeTax},
		{"withholding_vat", req.WithholdingVAT, &amounts.WithholdingVAT},
		{"withholding_gross_receipts", req.WithholdingGrossReceipts, &amounts.WithholdingGrossReceipts},
		{"withholding_social_security", req.WithholdingSocialSecurity, &amounts.WithholdingSocialSecurity},
	}

	for _, f := range fields {
		if f.value == "" {
			*f.dest = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return invoice.Amounts{}, errInvalidField(f.name)
		}
		*f.dest = d
	}

	return amounts, nil
}
