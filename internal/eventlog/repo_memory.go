package eventlog

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local runs (STORE_BACKEND=memory).
// Routing tables are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	configs map[string]RoutingConfig

	// Err, when set, is returned (wrapped with ErrStoreUnavailable) by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: map[string]RoutingConfig{}}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, workspaceID string) (RoutingConfig, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return RoutingConfig{}, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return RoutingConfig{}, WrapUnavailable(s.Err)
	}
	cfg, ok := s.configs[workspaceID]
	if !ok {
		cfg = RoutingConfig{WorkspaceID: workspaceID}
		s.configs[workspaceID] = cfg
	}
	return cfg, nil
}

func (s *MemoryStore) SetDestination(ctx context.Context, workspaceID string, kind Kind, channelID string) error {
	if err := ValidateSet(workspaceID, kind, channelID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return WrapUnavailable(s.Err)
	}
	cfg, ok := s.configs[workspaceID]
	if !ok {
		cfg = RoutingConfig{WorkspaceID: workspaceID}
	}
	s.configs[workspaceID] = cfg.WithDestination(kind, channelID)
	return nil
}

// Len reports how many workspace records exist.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configs)
}
