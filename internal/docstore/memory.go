package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used in tests and local development.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest any) error {
	s.mu.Lock()
	b, ok := s.docs[path]
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", path, err)
	}
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}

	s.mu.Lock()
	s.docs[path] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.docs[path]
	if !ok {
		return ErrNotFound
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", path, err)
	}
	applyFields(doc, fields)

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}
	s.docs[path] = encoded
	return nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, path string, update func(current []byte) (any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if b, ok := s.docs[path]; ok {
		current = b
	}

	next, err := update(current)
	if err != nil {
		return fmt.Errorf("docstore: transaction on %s: %w", path, err)
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}
	s.docs[path] = encoded
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Paths returns every stored document path.
func (s *MemoryStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	return paths
}
