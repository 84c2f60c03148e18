package handlers

import (
	"net/http"
	"strconv"

	paymentRequest "github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/dto/payment"
	"github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/payment"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Usecase payment.PaymentUsecase
}

func NewPaymentHandler(uc payment.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{Usecase: uc}
}

func respond(c *gin.Context, code int, body any) {
	c.JSON(code, paymentRequest.Envelope{ClientVersion: middleware.ClientVersion(c), Response: body})
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, domain.Unprocessable(err.Error()))
		return false
	}
	return true
}

func paymentResult(res *domain.PaymentResult) gin.H {
	return gin.H{
		"entity":      []string{res.Entity},
		"transaction": paymentdto.FromTransaction(res.Transaction),
		"driver":      res.Driver,
	}
}

func (h *PaymentHandler) MakePayment(c *gin.Context) {
	var req paymentRequest.MakePaymentRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Usecase.MakePayment(c.Request.Context(), req.ToDomain(), middleware.Client(c), middleware.ClientVersion(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentResult(res))
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var req paymentRequest.RefundPaymentRequest
	if !bind(c, &req) {
		return
	}
	tx, refund, err := h.Usecase.RefundPayment(c.Request.Context(), req.ToDomain(), middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"entity":      []string{payment.EntityRefund},
		"transaction": paymentdto.FromTransaction(tx),
		"refund":      paymentdto.FromRefund(refund),
	})
}

func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	recheck, _ := strconv.ParseBool(c.DefaultQuery("recheck", "false"))
	entity := c.DefaultQuery("entity", payment.EntityTransaction)
	out, err := h.Usecase.GetPaymentStatus(c.Request.Context(), c.Param("transaction_id"), entity, recheck)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *PaymentHandler) GetPaymentStatusBySourceID(c *gin.Context) {
	out, err := h.Usecase.GetPaymentStatusBySourceID(c.Request.Context(), c.Param("source_id"), middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *PaymentHandler) GetTransactionByPaymentID(c *gin.Context) {
	driverID, _ := strconv.Atoi(c.Query("driver_id"))
	res, err := h.Usecase.GetTransactionByPaymentID(c.Request.Context(), c.Param("payment_id"), driverID, middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentResult(res))
}

func (h *PaymentHandler) CreatePaymentLink(c *gin.Context) {
	var req paymentRequest.CreatePaymentLinkRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Usecase.CreatePaymentLink(c.Request.Context(), req.ToDomain(), middleware.Client(c), middleware.ClientVersion(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromPaymentLinkResult(res))
}

func (h *PaymentHandler) CancelPaymentLink(c *gin.Context) {
	res, err := h.Usecase.CancelPaymentLink(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromPaymentLinkResult(res))
}

func (h *PaymentHandler) ResendPaymentLink(c *gin.Context) {
	var req paymentRequest.ResendPaymentLinkRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Usecase.ResendPaymentLink(c.Request.Context(), c.Param("transaction_id"), domain.NotifyMedium(req.Medium))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromPaymentLinkResult(res))
}

func (h *PaymentHandler) GetPaymentLinkStatus(c *gin.Context) {
	res, err := h.Usecase.GetPaymentLinkStatus(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromPaymentLinkResult(res))
}

func (h *PaymentHandler) CreateQRCode(c *gin.Context) {
	var req paymentRequest.CreateQRCodeRequest
	if !bind(c, &req) {
		return
	}
	qr, err := h.Usecase.CreateQRCode(c.Request.Context(), req.ToDomain(), middleware.Client(c), middleware.ClientVersion(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromQRCode(qr))
}

func (h *PaymentHandler) CloseQRCode(c *gin.Context) {
	qr, err := h.Usecase.CloseQRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromQRCode(qr))
}

func (h *PaymentHandler) GetQRCodeStatus(c *gin.Context) {
	qr, gateway, err := h.Usecase.GetQRCodeStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"qr_code": paymentdto.FromQRCode(qr), "gateway_response": gateway})
}
