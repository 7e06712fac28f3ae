package gateway

import (
	"sort"
	"sync"

	"github.com/Haleralex/payflow/internal/application/gateway"
)

// Registry maps gateway names to their clients and webhook signature header,
// backing the per-gateway inbound webhook route and per-call gateway
// selection. Registration happens once at startup; lookups are concurrent.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	gateway         gateway.Gateway
	signatureHeader string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a gateway under name. The signature header is the
// gateway-specific HTTP header its webhooks carry their HMAC in.
func (r *Registry) Register(name string, gw gateway.Gateway, signatureHeader string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = registryEntry{gateway: gw, signatureHeader: signatureHeader}
}

// Resolve returns the gateway and signature header registered under name.
func (r *Registry) Resolve(name string) (gateway.Gateway, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, "", false
	}
	return e.gateway, e.signatureHeader, true
}

// Names lists the registered gateway names in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
