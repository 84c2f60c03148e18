package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/gin-gonic/gin"
)

// Webhooks always answer 200 {"success":true}; diagnostics stay in the
// audit trail and logs.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	gateway := c.Param("gateway")
	driverID, err := strconv.Atoi(c.Param("driver_id"))
	if err != nil {
		slog.Warn("webhook with invalid driver id", "gateway", gateway, "driver_id", c.Param("driver_id"))
		c.JSON(http.StatusOK, domain.Ack())
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		slog.Warn("failed to read webhook body", "gateway", gateway, "error", err)
		c.JSON(http.StatusOK, domain.Ack())
		return
	}

	wh := domain.Webhook{
		CallbackType: strings.Trim(c.Param("type"), "/"),
		RawBody:      body,
		Headers:      make(map[string]string, len(c.Request.Header)),
	}
	for name := range c.Request.Header {
		wh.Headers[name] = c.Request.Header.Get(name)
	}
	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			wh.Form = make(map[string]string, len(values))
			for k := range values {
				wh.Form[k] = values.Get(k)
			}
		}
	}

	c.JSON(http.StatusOK, h.Usecase.ProcessCallback(c.Request.Context(), gateway, driverID, wh))
}
