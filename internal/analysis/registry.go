package analysis

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps tokenizer names to tokenizers.
type Registry struct {
	tokenizers map[string]*Tokenizer
	mu         sync.RWMutex
}

// Built-in tokenizer names.
const (
	TinySeg  = "tinyseg"
	CharType = "chartype"
)

// NewRegistry creates a Registry with the dictionary-free tokenizer
// registered. The dictionary tokenizer is added by RegisterKagome.
func NewRegistry() *Registry {
	r := &Registry{
		tokenizers: make(map[string]*Tokenizer),
	}
	r.tokenizers[CharType] = NewTokenizer(NewCharClass())
	return r
}

// RegisterKagome loads the dictionary segmenter and registers it as "tinyseg".
func (r *Registry) RegisterKagome() error {
	k, err := NewKagome()
	if err != nil {
		return err
	}
	return r.Register(TinySeg, NewTokenizer(k))
}

// Get returns the tokenizer registered under the given name.
func (r *Registry) Get(name string) (*Tokenizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokenizers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tokenizer: %q", name)
	}
	return t, nil
}

// Register adds a tokenizer to the registry.
func (r *Registry) Register(name string, t *Tokenizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokenizers[name]; exists {
		return fmt.Errorf("tokenizer already registered: %q", name)
	}
	r.tokenizers[name] = t
	return nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokenizers))
	for name := range r.tokenizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
