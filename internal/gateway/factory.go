package gateway

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/paytm"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/razorpay"
)

const (
	DriverRazorpay = "razorpay"
	DriverPaytm    = "paytm"
)

// New builds the driver named by cfg.Driver. The set of drivers is closed.
func New(cfg config.Gateway, deps base.Deps) (domain.Driver, error) {
	switch cfg.Driver {
	case DriverRazorpay:
		return razorpay.NewDriver(cfg, deps), nil
	case DriverPaytm:
		return paytm.NewDriver(cfg, deps), nil
	default:
		return nil, fmt.Errorf("gateway %d: unknown driver %q", cfg.ID, cfg.Driver)
	}
}

// Registry holds one driver per configured gateway id.
type Registry struct {
	mu        sync.RWMutex
	drivers   map[int]domain.Driver
	defaultID int
}

// NewRegistry builds every configured gateway once.
func NewRegistry(cfg config.Gateways, deps base.Deps) (*Registry, error) {
	r := &Registry{
		drivers:   make(map[int]domain.Driver, len(cfg.List)),
		defaultID: cfg.Default,
	}
	for _, gw := range cfg.List {
		driver, err := New(gw, deps)
		if err != nil {
			return nil, err
		}
		r.Register(gw.ID, driver)
	}
	return r, nil
}

func (r *Registry) Register(id int, driver domain.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[id] = driver
}

// Driver returns the driver configured under id.
func (r *Registry) Driver(id int) (domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, domain.NotFound(fmt.Sprintf("gateway configuration %d not found", id))
	}
	return driver, nil
}

// DefaultID is the gateway used when neither the request nor the client names one.
func (r *Registry) DefaultID() int {
	return r.defaultID
}

func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.drivers))
	for id := range r.drivers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
