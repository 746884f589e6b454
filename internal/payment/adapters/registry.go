package adapters

import (
	"fmt"
	"sync"

	"github.com/lexdraftlabs/lexdraft/internal/payment/domain"
)

// Registry holds adapter factories keyed by provider name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	r := &Registry{factories: make(map[string]domain.AdapterFactory)}
	for _, f := range factories {
		r.factories[f.Provider()] = f
	}
	return r
}

func (r *Registry) Register(f domain.AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.Provider()] = f
}

func (r *Registry) NewAdapter(cfg domain.AdapterConfig) (domain.PaymentAdapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, cfg.Provider)
	}
	return factory.NewAdapter(cfg)
}
