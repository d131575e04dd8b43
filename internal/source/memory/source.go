// Package memory stores documents in-memory for development and tests.
package memory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Source serves documents from an in-memory map.
type Source struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSource creates a new in-memory source.
func NewSource() *Source {
	return &Source{data: make(map[string][]byte)}
}

// Put registers a document under the given name.
func (s *Source) Put(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = append([]byte(nil), content...)
}

// List returns one WorkItem per stored document whose extension is allowed,
// in deterministic name order.
func (s *Source) List(_ context.Context, allowed []string) ([]contracts.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		if extensionAllowed(name, allowed) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	items := make([]contracts.WorkItem, 0, len(names))
	for _, name := range names {
		items = append(items, contracts.WorkItem{
			Name:     name,
			Location: name,
			Source:   contracts.SourceMemory,
		})
	}
	return items, nil
}

// Fetch returns the stored bytes for the item.
func (s *Source) Fetch(_ context.Context, item contracts.WorkItem) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.data[item.Location]
	if !ok {
		return nil, fmt.Errorf("document %q not found", item.Location)
	}
	return append([]byte(nil), content...), nil
}

func extensionAllowed(name string, allowed []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
