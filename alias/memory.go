package alias

import (
	"context"
	"sync"

	"github.com/huajiao-tv/rundeckbot/logic"
)

// MemoryStore 进程内存储，重启后丢失，用于 -cmd 和测试
type MemoryStore struct {
	sync.RWMutex
	aliases map[string]logic.Alias
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{aliases: make(map[string]logic.Alias)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (logic.Alias, error) {
	s.RLock()
	defer s.RUnlock()
	if a, ok := s.aliases[id]; ok {
		return a, nil
	}
	return logic.Alias{ID: id}, nil
}

func (s *MemoryStore) Set(_ context.Context, a logic.Alias) error {
	s.Lock()
	s.aliases[a.ID] = a
	s.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.Lock()
	delete(s.aliases, id)
	s.Unlock()
	return nil
}

func (s *MemoryStore) IDs(context.Context) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	ids := make([]string, 0, len(s.aliases))
	for id := range s.aliases {
		ids = append(ids, id)
	}
	return ids, nil
}
