package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter mounts the client api under /v1, gateway webhooks under
// /callback and the operational endpoints.
func NewRouter(h *PaymentHandler, auth middleware.Authenticator, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	r.POST("/callback/:gateway/:driver_id", h.Webhook)
	r.POST("/callback/:gateway/:driver_id/:type", h.Webhook)

	v1 := r.Group("/v1", middleware.APIKeyAuth(auth))
	{
		v1.POST("/make_payment", h.MakePayment)
		v1.POST("/refund_payment", h.RefundPayment)
		v1.GET("/get_payment_status/:transaction_id", h.GetPaymentStatus)
		v1.GET("/get_payment_status_by_source_id/:source_id", h.GetPaymentStatusBySourceID)
		v1.GET("/get_transaction_by_payment_id/:payment_id", h.GetTransactionByPaymentID)

		v1.POST("/create_payment_link", h.CreatePaymentLink)
		v1.PUT("/cancel_payment_link/:transaction_id", h.CancelPaymentLink)
		v1.PUT("/resend_payment_link/:transaction_id", h.ResendPaymentLink)
		v1.GET("/get_payment_link_status/:transaction_id", h.GetPaymentLinkStatus)

		v1.POST("/create_qr_code", h.CreateQRCode)
		v1.PUT("/close_qr_code/:id", h.CloseQRCode)
		v1.GET("/get_qr_code_status/:id", h.GetQRCodeStatus)

		v1.GET("/disputes", h.ListDisputes)
		v1.POST("/disputes/:driver_id/:dispute_id/accept", h.AcceptDispute)
		v1.POST("/disputes/:driver_id/:dispute_id/contest", h.ContestDispute)
		v1.POST("/documents/:driver_id", h.UploadDocument)
		v1.GET("/documents/:driver_id/:document_id", h.GetDocument)

		v1.GET("/payment_methods/:driver_id", h.PaymentMethods)
		v1.GET("/payment_downtime/:driver_id", h.PaymentDowntime)

		admin := v1.Group("/admin")
		admin.GET("/transactions", h.ListTransactions)
		admin.GET("/transactions/:id", h.GetTransaction)
		admin.GET("/refunds", h.ListRefunds)
		admin.GET("/qr_codes", h.ListQRCodes)
		admin.GET("/callbacks/:transaction_id", h.ListCallbacks)
	}
	return r
}
