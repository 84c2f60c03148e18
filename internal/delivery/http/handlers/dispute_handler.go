package handlers

import (
	"io"
	"net/http"
	"strconv"

	paymentRequest "github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/dto/payment"
	"github.com/LavaJover/shvark-payment-gateway/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
	"github.com/gin-gonic/gin"
)

// maxDocumentSize bounds dispute evidence uploads.
const maxDocumentSize = 10 << 20

func driverParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("driver_id"))
	if err != nil {
		middleware.AbortWithError(c, domain.Unprocessable("driver_id must be a number"))
		return 0, false
	}
	return id, true
}

func (h *PaymentHandler) AcceptDispute(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	res, err := h.Usecase.AcceptDispute(c.Request.Context(), driverID, c.Param("dispute_id"), middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromDisputeResult(res))
}

func (h *PaymentHandler) ContestDispute(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	var req paymentRequest.ContestDisputeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Usecase.ContestDispute(c.Request.Context(), driverID, c.Param("dispute_id"), req.ToDomain(), middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromDisputeResult(res))
}

func (h *PaymentHandler) UploadDocument(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		middleware.AbortWithError(c, domain.Unprocessable("file is required"))
		return
	}
	if header.Size > maxDocumentSize {
		middleware.AbortWithError(c, domain.Unprocessable("file is too large"))
		return
	}
	f, err := header.Open()
	if err != nil {
		middleware.AbortWithError(c, domain.Internal(err.Error()))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		middleware.AbortWithError(c, domain.Internal(err.Error()))
		return
	}

	doc, err := h.Usecase.UploadDocument(c.Request.Context(), driverID, domain.DocumentUpload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}, middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, paymentdto.FromDocument(doc))
}

func (h *PaymentHandler) GetDocument(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	doc, err := h.Usecase.GetDocument(c.Request.Context(), driverID, c.Param("document_id"), middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, doc)
}

func (h *PaymentHandler) ListDisputes(c *gin.Context) {
	page, limit := pageParams(c)
	filter := domain.DisputeFilter{PaymentID: c.Query("payment_id"), Page: page, Limit: limit}
	if s := c.Query("status"); s != "" {
		st := domain.DisputeStatus(s)
		filter.Status = &st
	}
	disputes, total, err := h.Usecase.ListDisputes(c.Request.Context(), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	views := make([]*paymentdto.DisputeView, 0, len(disputes))
	for _, d := range disputes {
		views = append(views, paymentdto.FromDispute(d))
	}
	respond(c, http.StatusOK, paymentRequest.ListResponse{Items: views, Pagination: paymentdto.NewPagination(page, limit, total)})
}

func (h *PaymentHandler) PaymentMethods(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	methods, err := h.Usecase.PaymentMethods(c.Request.Context(), driverID, middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, methods)
}

func (h *PaymentHandler) PaymentDowntime(c *gin.Context) {
	driverID, ok := driverParam(c)
	if !ok {
		return
	}
	downtime, err := h.Usecase.PaymentDowntime(c.Request.Context(), driverID, middleware.Client(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, downtime)
}
