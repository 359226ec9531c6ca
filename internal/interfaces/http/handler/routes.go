package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes registers instrument lifecycle routes
func (h *InstrumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	instruments := rg.Group("/instruments")
	{
		instruments.POST("", h.Create)
		instruments.GET("", h.List)
		instruments.GET("/summary", h.Summary)
		instruments.GET("/:id", h.Get)
		instruments.PUT("/:id", h.Amend)
		instruments.POST("/:id/deposit", h.Deposit)
		instruments.POST("/:id/collect", h.Collect)
		instruments.POST("/:id/endorse", h.Endorse)
		instruments.POST("/:id/reject", h.Reject)
		instruments.POST("/:id/void", h.Void)
	}
}

// RegisterRoutes registers sale and lot settlement routes
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/instruments/settlement-preview", h.PreviewSettlement)
	rg.POST("/instruments/:id/sell", h.SellSolo)
	rg.POST("/instruments/sell-batch", h.SellBatch)

	lots := rg.Group("/lots")
	{
		lots.GET("", h.ListLots)
		lots.POST("/:id/credit", h.CreditLot)
	}
}

// RegisterRoutes registers vendor invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.POST("/:id/void", h.Void)
		invoices.POST("/:id/payments", h.RegisterPayment)
	}
}

// RegisterRoutes registers treasury account and movement routes
func (h *TreasuryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/treasury/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.POST("/:id/activate", h.Activate)
		accounts.POST("/:id/deactivate", h.Deactivate)
	}

	rg.GET("/treasury/movements", h.ListMovements)
}
