// Package memory provides a storage.Storage kept in process memory. It is
// used when no database is configured; the ledger is lost on restart and the
// comment scan alone guards against double posting.
package memory

import (
	"context"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/storage"
	"sync"
	"time"
)

// Memory is a concurrency-safe in-memory ledger.
type Memory struct {
	mu       sync.RWMutex
	comments map[domain.SubmissionID]domain.PostedComment
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{comments: make(map[domain.SubmissionID]domain.PostedComment)}
}

// PostedComment returns a copy of the recorded comment, or nil.
func (m *Memory) PostedComment(_ context.Context, id domain.SubmissionID) (*domain.PostedComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, nil
	}

	return &c, nil
}

// StorePostedComment records the comment unless the submission is known.
func (m *Memory) StorePostedComment(_ context.Context, comment domain.PostedComment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[comment.SubmissionID]; ok {
		return false, nil
	}
	if comment.PostedAt.IsZero() {
		comment.PostedAt = time.Now().UTC()
	}
	m.comments[comment.SubmissionID] = comment

	return true, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

var _ storage.Storage = (*Memory)(nil)
