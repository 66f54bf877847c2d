package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/gallery"
	"github.com/pders01/gallr/internal/provider/feedsrc"
	"github.com/pders01/gallr/internal/provider/pixabay"
)

// Auto selects the highest priority provider that is ready to serve.
const Auto = "auto"

// Provider is an image search backend that can be registered by name.
type Provider interface {
	gallery.Searcher

	// Name returns the provider name used in configuration
	Name() string

	// Ready reports whether the provider has what it needs (keys, URLs)
	Ready() bool

	// Priority orders providers for Auto selection (higher = preferred)
	Priority() int
}

// Registry manages all registered providers
type Registry struct {
	providers []Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make([]Provider, 0)}
}

// Default returns a registry with the built-in providers configured from cfg.
func Default(cfg *config.Config) *Registry {
	r := NewRegistry()
	r.Register(&pixabayProvider{Client: pixabay.NewClient(cfg), key: cfg.API.Key})
	r.Register(&feedProvider{Source: feedsrc.NewSource(cfg), template: cfg.API.FeedURL})
	return r
}

func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Resolve returns the provider called name, or the best ready provider for
// Auto and the empty string.
func (r *Registry) Resolve(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == Auto {
		var best Provider
		for _, p := range r.providers {
			if p.Ready() && (best == nil || p.Priority() > best.Priority()) {
				best = p
			}
		}
		if best == nil {
			return nil, fmt.Errorf("no image provider is configured")
		}
		return best, nil
	}

	for _, p := range r.providers {
		if p.Name() == name {
			if !p.Ready() {
				return nil, fmt.Errorf("provider %q is not configured", name)
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

type pixabayProvider struct {
	*pixabay.Client
	key string
}

func (p *pixabayProvider) Name() string  { return pixabay.Name }
func (p *pixabayProvider) Ready() bool   { return p.key != "" }
func (p *pixabayProvider) Priority() int { return 100 }

type feedProvider struct {
	*feedsrc.Source
	template string
}

func (p *feedProvider) Name() string  { return feedsrc.Name }
func (p *feedProvider) Ready() bool   { return p.template != "" }
func (p *feedProvider) Priority() int { return 10 }
