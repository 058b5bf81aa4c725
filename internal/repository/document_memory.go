package repository

import (
	"context"
	"sync"
)

type memoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]string
}

// NewMemoryDocumentRepository is a process-local store, used by tests and STORE_BACKEND=memory.
func NewMemoryDocumentRepository() DocumentRepository {
	return &memoryDocumentRepository{docs: make(map[string]string)}
}

func (r *memoryDocumentRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	body, ok := r.docs[key]
	if !ok {
		return "", ErrDocumentNotFound
	}
	return body, nil
}

func (r *memoryDocumentRepository) Put(_ context.Context, key, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[key] = body
	return nil
}
