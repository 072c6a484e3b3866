package adapters

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/mvsfs"
)

// ErrUnknownSource is returned for a source type no provider is registered for.
var ErrUnknownSource = errors.New("unknown source type")

// Provider creates listing clients from a raw source definition.
type Provider interface {
	NewClient(raw []byte) (mvsfs.ListingClient, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(raw []byte) (mvsfs.ListingClient, error)

func (f ProviderFunc) NewClient(raw []byte) (mvsfs.ListingClient, error) {
	return f(raw)
}

// Registry maps source types to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register ties a provider to a source type. The first registration for a
// type wins; later ones are ignored.
func (r *Registry) Register(sourceType string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[sourceType]; ok {
		return
	}
	r.providers[sourceType] = p
}

// GetProvider returns the provider registered for sourceType.
func (r *Registry) GetProvider(sourceType string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[sourceType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceType)
	}
	return p, nil
}

// NewClient picks a provider by the "type" field of a YAML or JSON source
// definition and creates a client from it.
func (r *Registry) NewClient(raw []byte) (mvsfs.ListingClient, error) {
	var meta struct {
		Type string `yaml:"type"`
	}
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to read source type: %w", err)
	}
	if meta.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", ErrUnknownSource)
	}
	p, err := r.GetProvider(meta.Type)
	if err != nil {
		return nil, err
	}
	return p.NewClient(raw)
}

// NewClientFromFile reads a source definition file and creates its client.
func (r *Registry) NewClientFromFile(path string) (mvsfs.ListingClient, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.NewClient(raw)
}
