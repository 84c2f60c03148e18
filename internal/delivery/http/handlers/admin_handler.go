package handlers

import (
	"net/http"
	"strconv"

	paymentRequest "github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/dto/payment"
	"github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
	"github.com/gin-gonic/gin"
)

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return page, limit
}

func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	page, limit := pageParams(c)
	filter := domain.TransactionFilter{
		ClientID: c.Query("client_id"),
		SourceID: c.Query("source_id"),
		Page:     page,
		Limit:    limit,
	}
	if s := c.Query("status"); s != "" {
		st := domain.TransactionStatus(s)
		filter.Status = &st
	}
	if d := c.Query("driver_id"); d != "" {
		if id, err := strconv.Atoi(d); err == nil {
			filter.DriverID = &id
		}
	}
	txs, total, err := h.Usecase.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	views := make([]*paymentdto.TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, paymentdto.FromTransaction(tx))
	}
	respond(c, http.StatusOK, paymentRequest.ListResponse{Items: views, Pagination: paymentdto.NewPagination(page, limit, total)})
}

func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	tx, err := h.Usecase.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromTransaction(tx))
}

func (h *PaymentHandler) ListRefunds(c *gin.Context) {
	page, limit := pageParams(c)
	filter := domain.RefundFilter{TransactionID: c.Query("transaction_id"), Page: page, Limit: limit}
	if s := c.Query("status"); s != "" {
		st := domain.RefundStatus(s)
		filter.Status = &st
	}
	refunds, total, err := h.Usecase.ListRefunds(c.Request.Context(), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentRequest.ListResponse{Items: paymentdto.FromRefunds(refunds), Pagination: paymentdto.NewPagination(page, limit, total)})
}

func (h *PaymentHandler) ListQRCodes(c *gin.Context) {
	page, limit := pageParams(c)
	filter := domain.QRCodeFilter{StoreID: c.Query("store_id"), Page: page, Limit: limit}
	if s := c.Query("status"); s != "" {
		st := domain.QRStatus(s)
		filter.Status = &st
	}
	qrs, total, err := h.Usecase.ListQRCodes(c.Request.Context(), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	views := make([]*paymentdto.QRCodeView, 0, len(qrs))
	for _, qr := range qrs {
		views = append(views, paymentdto.FromQRCode(qr))
	}
	respond(c, http.StatusOK, paymentRequest.ListResponse{Items: views, Pagination: paymentdto.NewPagination(page, limit, total)})
}

func (h *PaymentHandler) ListCallbacks(c *gin.Context) {
	callbacks, err := h.Usecase.ListCallbacks(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	views := make([]*paymentdto.CallbackView, 0, len(callbacks))
	for _, cb := range callbacks {
		views = append(views, paymentdto.FromCallback(cb))
	}
	respond(c, http.StatusOK, views)
}
