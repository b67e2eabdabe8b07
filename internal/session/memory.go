package session

import (
	"context"
	"sync"

	"inkwell/internal/models"
)

// MemorySlot keeps the user in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	user *models.User
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrEmptySlot
	}
	u := *s.user
	return &u, nil
}

func (s *MemorySlot) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *u
	s.user = &stored
	return nil
}

func (s *MemorySlot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
