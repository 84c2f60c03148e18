package razorpay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
)

func (d *Driver) CreatePaymentLink(ctx context.Context, req domain.CreatePaymentLinkRequest, client *domain.Client, clientVersion string) (*domain.PaymentLinkResult, error) {
	cust := customer{
		Name:    req.CustomerName,
		Email:   req.CustomerEmail,
		Contact: domain.CountryCodeIndia + req.CustomerPhone,
	}
	notes := base.CloneNotes(req.AdditionalInfo)
	notes["source_id"] = req.SourceID
	notes["store_id"] = req.StoreID
	notes["payment_type"] = domain.PaymentTypeLink
	body := linkRequest{
		Amount:      domain.ToMinorUnits(req.Amount),
		Currency:    domain.CurrencyINR,
		Description: req.Description,
		Customer:    cust,
		Notify:      linkNotify{SMS: true, Email: req.CustomerEmail != ""},
		Notes:       notes,
	}

	var created paymentLinkEntity
	raw, err := d.api.post(ctx, "create_payment_link", "/v1/payment_links", body, &created)
	if err != nil {
		slog.Error("razorpay payment link creation failed", "source_id", req.SourceID, "error", err)
		return nil, domain.Forbidden(err.Error())
	}

	// Razorpay only attaches an order to a link once the link is opened.
	if created.ShortURL != "" {
		d.api.touch(ctx, created.ShortURL)
	}
	var fetched paymentLinkEntity
	if fetchedRaw, err := d.api.get(ctx, "fetch_payment_link", "/v1/payment_links/"+url.PathEscape(created.ID), &fetched); err == nil {
		raw = fetchedRaw
		created = fetched
	} else {
		slog.Warn("failed to refetch payment link", "plink_id", created.ID, "error", err)
	}

	storeType := req.StoreType
	if storeType == "" {
		storeType = domain.StoreTypeBD
	}
	tx := &domain.Transaction{
		SourceID:       req.SourceID,
		TotalAmount:    req.Amount,
		Amount:         req.Amount,
		PaymentType:    domain.PaymentTypeLink,
		StoreType:      storeType,
		StoreID:        req.StoreID,
		DriverID:       d.id,
		GatewayOrderID: created.OrderID,
		Status:         domain.StatusPending,
		APIRequest:     base.MustJSON(body),
		APIResponse:    raw,
		APIStatus:      http.StatusOK,
		AdditionalInfo: map[string]any{"name": cust.Name, "email": cust.Email, "contact": cust.Contact},
		APIVersion:     domain.DefaultAPIVersion,
		ClientVersion:  clientVersion,
	}
	if client != nil {
		tx.ClientID = client.ID
	}
	if err := d.Transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist link transaction: %w", err)
	}

	link := &domain.PaymentLink{
		TransactionID:  tx.ID,
		PlinkID:        created.ID,
		Status:         created.Status,
		APIResponse:    raw,
		NotifySMSCount: 1,
	}
	if req.CustomerEmail != "" {
		link.NotifyEmailCount = 1
	}
	if err := d.Links.CreatePaymentLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to persist payment link: %w", err)
	}
	return &domain.PaymentLinkResult{Transaction: tx, PaymentLink: link, GatewayResponse: raw}, nil
}

func (d *Driver) linkOf(ctx context.Context, tx *domain.Transaction) (*domain.PaymentLink, error) {
	link, err := d.Links.GetPaymentLinkByTransactionID(ctx, tx.ID)
	if err != nil {
		return nil, domain.NotFound(fmt.Sprintf("Payment link not found for transaction %s", tx.ID))
	}
	return link, nil
}

func (d *Driver) CancelPaymentLink(ctx context.Context, tx *domain.Transaction) (*domain.PaymentLinkResult, error) {
	link, err := d.linkOf(ctx, tx)
	if err != nil {
		return nil, err
	}

	var entity paymentLinkEntity
	raw, err := d.api.post(ctx, "cancel_payment_link", "/v1/payment_links/"+url.PathEscape(link.PlinkID)+"/cancel", nil, &entity)
	if err != nil {
		return nil, forbiddenf("Error while cancel payment link", err)
	}

	if _, err := d.Transactions.CancelTransaction(ctx, tx.ID); err != nil {
		return nil, fmt.Errorf("failed to cancel transaction: %w", err)
	}
	if fresh, err := d.Transactions.GetTransactionByID(ctx, tx.ID); err == nil {
		tx = fresh
	}

	link.Status = entity.Status
	link.APIResponse = raw
	link.UpdateCount++
	if err := d.Links.SavePaymentLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save payment link: %w", err)
	}
	return &domain.PaymentLinkResult{Transaction: tx, PaymentLink: link, GatewayResponse: raw}, nil
}

func (d *Driver) ResendPaymentLink(ctx context.Context, tx *domain.Transaction, medium domain.NotifyMedium) (*domain.PaymentLinkResult, error) {
	link, err := d.linkOf(ctx, tx)
	if err != nil {
		return nil, err
	}

	path := "/v1/payment_links/" + url.PathEscape(link.PlinkID) + "/notify_by/" + string(medium)
	raw, err := d.api.post(ctx, "resend_payment_link", path, nil, nil)
	if err != nil {
		return nil, forbiddenf("Error while resend payment link", err)
	}

	link.Status = domain.LinkPending
	link.UpdateCount++
	switch medium {
	case domain.NotifySMS:
		link.NotifySMSCount++
	case domain.NotifyEmail:
		link.NotifyEmailCount++
	}
	if err := d.Links.SavePaymentLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save payment link: %w", err)
	}
	return &domain.PaymentLinkResult{Transaction: tx, PaymentLink: link, GatewayResponse: raw}, nil
}

func (d *Driver) GetPaymentLinkStatus(ctx context.Context, tx *domain.Transaction) (*domain.PaymentLinkResult, error) {
	link, err := d.linkOf(ctx, tx)
	if err != nil {
		return nil, err
	}

	var entity paymentLinkEntity
	raw, err := d.api.get(ctx, "payment_link_status", "/v1/payment_links/"+url.PathEscape(link.PlinkID), &entity)
	if err != nil {
		return nil, forbiddenf("Error while get payment link status", err)
	}

	if status := domain.LinkTransactionStatus(entity.Status); tx.Status != domain.StatusSuccess && tx.Status != status {
		tx.Status = status
		if entity.OrderID != "" && tx.GatewayOrderID == "" {
			tx.GatewayOrderID = entity.OrderID
		}
		if err := d.Transactions.SaveTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
	}

	link.Status = entity.Status
	link.APIResponse = raw
	link.UpdateCount++
	if err := d.Links.SavePaymentLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save payment link: %w", err)
	}
	return &domain.PaymentLinkResult{Transaction: tx, PaymentLink: link, GatewayResponse: raw}, nil
}
