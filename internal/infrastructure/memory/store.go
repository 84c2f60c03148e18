// Package memory keeps every repository port in process memory. It backs
// local runs with payment_db.in_memory and the usecase tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
	"github.com/google/uuid"
)

type commKey struct {
	transactionID string
	event         domain.NotificationEvent
}

type Store struct {
	mu             sync.RWMutex
	transactions   map[string]domain.Transaction
	refunds        map[string]domain.RefundTransaction
	qrCodes        map[string]domain.QRCode
	links          map[string]domain.PaymentLink
	callbacks      []domain.TransactionCallback
	communications map[commKey]domain.TransactionCommunication
	disputes       map[string]domain.Dispute
	evidences      map[string]domain.DisputeEvidence
	documents      map[string]domain.DisputeDocument
	clients        map[string]domain.Client
	gateways       []domain.ClientGateway
	now            func() time.Time
}

func NewStore() *Store {
	return &Store{
		transactions:   make(map[string]domain.Transaction),
		refunds:        make(map[string]domain.RefundTransaction),
		qrCodes:        make(map[string]domain.QRCode),
		links:          make(map[string]domain.PaymentLink),
		communications: make(map[commKey]domain.TransactionCommunication),
		disputes:       make(map[string]domain.Dispute),
		evidences:      make(map[string]domain.DisputeEvidence),
		documents:      make(map[string]domain.DisputeDocument),
		clients:        make(map[string]domain.Client),
		now:            time.Now,
	}
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.GatewayPaymentID != "" {
		for _, stored := range s.transactions {
			if stored.GatewayPaymentID == tx.GatewayPaymentID {
				return domain.ErrDuplicatePaymentID
			}
		}
	}
	if tx.ID == "" {
		tx.ID = idgen.NewULID()
	}
	if tx.Status == "" {
		tx.Status = domain.StatusPending
	}
	now := s.now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) SaveTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.UpdatedAt = s.now()
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) ApplyCallbackUpdate(_ context.Context, tx *domain.Transaction, force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.transactions[tx.ID]
	if !ok {
		return false, nil
	}
	if !force && stored.Status == domain.StatusSuccess {
		return false, nil
	}
	stored.Status = tx.Status
	stored.CallbackResponse = tx.CallbackResponse
	if tx.GatewayPaymentID != "" {
		stored.GatewayPaymentID = tx.GatewayPaymentID
	}
	stored.UpdatedAt = s.now()
	s.transactions[tx.ID] = stored
	return true, nil
}

func (s *Store) CancelTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.transactions[id]
	if !ok || stored.Status == domain.StatusSuccess {
		return false, nil
	}
	stored.Status = domain.StatusCancelled
	stored.UpdatedAt = s.now()
	s.transactions[id] = stored
	return true, nil
}

func (s *Store) findTransaction(match func(domain.Transaction) bool) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *domain.Transaction
	for _, tx := range s.transactions {
		if !match(tx) {
			continue
		}
		if found == nil || tx.CreatedAt.After(found.CreatedAt) {
			tx := tx
			found = &tx
		}
	}
	if found == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return found, nil
}

func (s *Store) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	return s.findTransaction(func(tx domain.Transaction) bool { return tx.ID == id })
}

func (s *Store) GetTransactionByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.Transaction, error) {
	return s.findTransaction(func(tx domain.Transaction) bool {
		return gatewayOrderID != "" && tx.GatewayOrderID == gatewayOrderID
	})
}

func (s *Store) GetTransactionByGatewayPaymentID(_ context.Context, gatewayPaymentID string) (*domain.Transaction, error) {
	return s.findTransaction(func(tx domain.Transaction) bool {
		return gatewayPaymentID != "" && tx.GatewayPaymentID == gatewayPaymentID
	})
}

func (s *Store) GetTransactionBySourceID(_ context.Context, sourceID string) (*domain.Transaction, error) {
	return s.findTransaction(func(tx domain.Transaction) bool { return tx.SourceID == sourceID })
}

func (s *Store) selectTransactions(match func(domain.Transaction) bool) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Transaction
	for _, tx := range s.transactions {
		if match(tx) {
			tx := tx
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) FindTransactionsByKey(_ context.Context, key domain.TransactionKey) ([]*domain.Transaction, error) {
	return s.selectTransactions(func(tx domain.Transaction) bool {
		return tx.SourceID == key.SourceID && tx.PaymentType == key.PaymentType &&
			tx.StoreID == key.StoreID && tx.ClientID == key.ClientID
	}), nil
}

func (s *Store) ListUnsettledTransactions(_ context.Context, limit int) ([]*domain.Transaction, error) {
	out := s.selectTransactions(func(tx domain.Transaction) bool {
		return tx.Status != domain.StatusSuccess && tx.GatewayOrderID != ""
	})
	return paginate(out, 1, limit), nil
}

func (s *Store) ListTransactionsByStatus(_ context.Context, status domain.TransactionStatus, limit int) ([]*domain.Transaction, error) {
	out := s.selectTransactions(func(tx domain.Transaction) bool { return tx.Status == status })
	return paginate(out, 1, limit), nil
}

func (s *Store) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	out := s.selectTransactions(func(tx domain.Transaction) bool {
		if filter.ClientID != "" && tx.ClientID != filter.ClientID {
			return false
		}
		if filter.Status != nil && tx.Status != *filter.Status {
			return false
		}
		if filter.DriverID != nil && tx.DriverID != *filter.DriverID {
			return false
		}
		return filter.SourceID == "" || tx.SourceID == filter.SourceID
	})
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

// Refunds

func (s *Store) CreateRefund(_ context.Context, refund *domain.RefundTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if refund.ID == "" {
		refund.ID = idgen.NewULID()
	}
	if refund.Status == "" {
		refund.Status = domain.RefundPending
	}
	now := s.now()
	refund.CreatedAt, refund.UpdatedAt = now, now
	s.refunds[refund.ID] = *refund
	return nil
}

func (s *Store) SaveRefund(_ context.Context, refund *domain.RefundTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	refund.UpdatedAt = s.now()
	s.refunds[refund.ID] = *refund
	return nil
}

func (s *Store) ApplyRefundCallback(_ context.Context, refund *domain.RefundTransaction, force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.refunds[refund.ID]
	if !ok {
		return false, nil
	}
	if !force && stored.Status == domain.RefundSuccess {
		return false, nil
	}
	stored.Status = refund.Status
	stored.Amount = refund.Amount
	stored.CallbackResponse = refund.CallbackResponse
	if refund.RefundID != "" {
		stored.RefundID = refund.RefundID
	}
	if refund.APIResponse != nil {
		stored.APIResponse = refund.APIResponse
	}
	stored.UpdatedAt = s.now()
	s.refunds[refund.ID] = stored
	return true, nil
}

func (s *Store) GetRefundByID(_ context.Context, id string) (*domain.RefundTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refund, ok := s.refunds[id]
	if !ok {
		return nil, domain.ErrRefundNotFound
	}
	return &refund, nil
}

func (s *Store) GetRefundByGatewayRefundID(_ context.Context, transactionID, refundID string) (*domain.RefundTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, refund := range s.refunds {
		if refund.TransactionID == transactionID && refundID != "" && refund.RefundID == refundID {
			return &refund, nil
		}
	}
	return nil, domain.ErrRefundNotFound
}

func (s *Store) selectRefunds(match func(domain.RefundTransaction) bool, ascending bool) []*domain.RefundTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.RefundTransaction
	for _, refund := range s.refunds {
		if match(refund) {
			refund := refund
			out = append(out, &refund)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) ListAssignedRefunds(_ context.Context, transactionID string) ([]*domain.RefundTransaction, error) {
	return s.selectRefunds(func(r domain.RefundTransaction) bool {
		return r.TransactionID == transactionID && r.RefundID != ""
	}, true), nil
}

func (s *Store) ListPendingRefunds(_ context.Context, limit int) ([]*domain.RefundTransaction, error) {
	out := s.selectRefunds(func(r domain.RefundTransaction) bool { return r.Status == domain.RefundPending }, true)
	return paginate(out, 1, limit), nil
}

func (s *Store) ListRefunds(_ context.Context, filter domain.RefundFilter) ([]*domain.RefundTransaction, int64, error) {
	out := s.selectRefunds(func(r domain.RefundTransaction) bool {
		if filter.TransactionID != "" && r.TransactionID != filter.TransactionID {
			return false
		}
		return filter.Status == nil || r.Status == *filter.Status
	}, false)
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

// QR codes

func (s *Store) CreateQRCode(_ context.Context, qr *domain.QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qr.QRID != "" {
		for _, stored := range s.qrCodes {
			if stored.QRID == qr.QRID {
				return domain.ErrDuplicateQRCode
			}
		}
	}
	if qr.ID == "" {
		qr.ID = idgen.NewULID()
	}
	now := s.now()
	qr.CreatedAt, qr.UpdatedAt = now, now
	s.qrCodes[qr.ID] = *qr
	return nil
}

func (s *Store) SaveQRCode(_ context.Context, qr *domain.QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	qr.UpdatedAt = s.now()
	s.qrCodes[qr.ID] = *qr
	return nil
}

func (s *Store) GetQRCodeByID(_ context.Context, id string) (*domain.QRCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qr, ok := s.qrCodes[id]
	if !ok {
		return nil, domain.ErrQRCodeNotFound
	}
	return &qr, nil
}

func (s *Store) GetQRCodeByQRID(_ context.Context, qrID string) (*domain.QRCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, qr := range s.qrCodes {
		if qrID != "" && qr.QRID == qrID {
			return &qr, nil
		}
	}
	return nil, domain.ErrQRCodeNotFound
}

func (s *Store) ListQRCodes(_ context.Context, filter domain.QRCodeFilter) ([]*domain.QRCode, int64, error) {
	s.mu.RLock()
	var out []*domain.QRCode
	for _, qr := range s.qrCodes {
		if filter.StoreID != "" && qr.StoreID != filter.StoreID {
			continue
		}
		if filter.Status != nil && qr.Status != *filter.Status {
			continue
		}
		qr := qr
		out = append(out, &qr)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

// Payment links

func (s *Store) CreatePaymentLink(_ context.Context, link *domain.PaymentLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID == "" {
		link.ID = idgen.NewULID()
	}
	now := s.now()
	link.CreatedAt, link.UpdatedAt = now, now
	s.links[link.TransactionID] = *link
	return nil
}

func (s *Store) SavePaymentLink(_ context.Context, link *domain.PaymentLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link.UpdatedAt = s.now()
	s.links[link.TransactionID] = *link
	return nil
}

func (s *Store) GetPaymentLinkByTransactionID(_ context.Context, transactionID string) (*domain.PaymentLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[transactionID]
	if !ok {
		return nil, domain.ErrPaymentLinkNotFound
	}
	return &link, nil
}

// Callbacks

func (s *Store) AppendCallback(_ context.Context, cb *domain.TransactionCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cb.ID = uint(len(s.callbacks) + 1)
	cb.CreatedAt = s.now()
	s.callbacks = append(s.callbacks, *cb)
	return nil
}

func (s *Store) ListCallbacksByTransaction(_ context.Context, transactionID string) ([]*domain.TransactionCallback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TransactionCallback
	for _, cb := range s.callbacks {
		if cb.TransactionID == transactionID {
			cb := cb
			out = append(out, &cb)
		}
	}
	return out, nil
}

// Callbacks returns every stored audit row in insertion order.
func (s *Store) Callbacks() []domain.TransactionCallback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TransactionCallback(nil), s.callbacks...)
}

// Communications

func (s *Store) FindOrCreateCommunication(_ context.Context, transactionID string, event domain.NotificationEvent) (*domain.TransactionCommunication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := commKey{transactionID, event}
	if c, ok := s.communications[key]; ok {
		return &c, nil
	}
	now := s.now()
	c := domain.TransactionCommunication{
		ID:            idgen.NewULID(),
		TransactionID: transactionID,
		Event:         event,
		Status:        domain.CommunicationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.communications[key] = c
	return &c, nil
}

func (s *Store) SaveCommunication(_ context.Context, c *domain.TransactionCommunication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = s.now()
	s.communications[commKey{c.TransactionID, c.Event}] = *c
	return nil
}

func (s *Store) ListUndelivered(_ context.Context, maxCount, limit int) ([]*domain.TransactionCommunication, error) {
	s.mu.RLock()
	var out []*domain.TransactionCommunication
	for _, c := range s.communications {
		if c.CommunicationCount <= maxCount && c.Status != domain.CommunicationSuccess {
			c := c
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, 1, limit), nil
}

// Disputes

func (s *Store) UpsertDispute(_ context.Context, dispute *domain.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.disputes[dispute.DisputeID]; ok {
		dispute.ID = existing.ID
		dispute.CreatedAt = existing.CreatedAt
		if dispute.DisputeEvidenceID == "" {
			dispute.DisputeEvidenceID = existing.DisputeEvidenceID
		}
	} else {
		if dispute.ID == "" {
			dispute.ID = idgen.NewULID()
		}
		dispute.CreatedAt = now
	}
	dispute.UpdatedAt = now
	s.disputes[dispute.DisputeID] = *dispute
	return nil
}

func (s *Store) GetDisputeByDisputeID(_ context.Context, disputeID string) (*domain.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dispute, ok := s.disputes[disputeID]
	if !ok {
		return nil, domain.ErrDisputeNotFound
	}
	return &dispute, nil
}

func (s *Store) SaveEvidence(_ context.Context, evidence *domain.DisputeEvidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if evidence.ID == "" {
		evidence.ID = idgen.NewULID()
		evidence.CreatedAt = s.now()
	}
	s.evidences[evidence.ID] = *evidence
	if dispute, ok := s.disputes[evidence.DisputeID]; ok {
		dispute.DisputeEvidenceID = evidence.ID
		s.disputes[evidence.DisputeID] = dispute
	}
	return nil
}

func (s *Store) SaveDocument(_ context.Context, doc *domain.DisputeDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = idgen.NewULID()
		doc.CreatedAt = s.now()
	}
	s.documents[doc.DocumentID] = *doc
	return nil
}

func (s *Store) ListDisputes(_ context.Context, filter domain.DisputeFilter) ([]*domain.Dispute, int64, error) {
	s.mu.RLock()
	var out []*domain.Dispute
	for _, d := range s.disputes {
		if filter.PaymentID != "" && d.PaymentID != filter.PaymentID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		d := d
		out = append(out, &d)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

// Clients

func (s *Store) CreateClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	client.CreatedAt = s.now()
	s.clients[client.ID] = *client
	return nil
}

func (s *Store) CreateClientGateway(_ context.Context, gw *domain.ClientGateway) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gw.ID == "" {
		gw.ID = uuid.NewString()
	}
	gw.CreatedAt = s.now()
	s.gateways = append(s.gateways, *gw)
	return nil
}

func (s *Store) GetClientByID(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &client, nil
}

func (s *Store) GetActiveClientByAPIKeyHash(_ context.Context, hash string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		if client.Active && client.APIKeyHash == hash {
			return &client, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (s *Store) GetActiveClientGateway(_ context.Context, clientID string, driverID int) (*domain.ClientGateway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gw := range s.gateways {
		if gw.ClientID == clientID && gw.DriverID == driverID && gw.Active {
			return &gw, nil
		}
	}
	return nil, domain.ErrClientGatewayNotFound
}

func (s *Store) GetDefaultClientGateway(_ context.Context, clientID string) (*domain.ClientGateway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gw := range s.gateways {
		if gw.ClientID == clientID && gw.Default && gw.Active {
			return &gw, nil
		}
	}
	return nil, domain.ErrClientGatewayNotFound
}

var (
	_ domain.TransactionRepository   = (*Store)(nil)
	_ domain.RefundRepository        = (*Store)(nil)
	_ domain.QRCodeRepository        = (*Store)(nil)
	_ domain.PaymentLinkRepository   = (*Store)(nil)
	_ domain.CallbackRepository      = (*Store)(nil)
	_ domain.CommunicationRepository = (*Store)(nil)
	_ domain.DisputeRepository       = (*Store)(nil)
	_ domain.ClientRepository        = (*Store)(nil)
)
