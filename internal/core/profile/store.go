package profile

import (
	"context"
	"sync"
)

// Profile 用戶畫像中本核心關心的部分：每日熱量預算與過敏源
type Profile struct {
	UserID         string   `json:"user_id"`
	DailyKcalLimit int      `json:"daily_kcal_limit"`
	Allergens      []string `json:"allergens"`
}

// Store 用戶畫像邊界，畫像由外部用戶系統擁有
type Store interface {
	// Get 用戶畫像，不存在時返回 (nil, nil)
	Get(ctx context.Context, userID string) (*Profile, error)
}

// MemoryStore 記憶體畫像存儲
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryStore 創建記憶體畫像存儲
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
	}
}

// Put 寫入用戶畫像
func (s *MemoryStore) Put(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// Get 用戶畫像，不存在時返回 (nil, nil)
func (s *MemoryStore) Get(ctx context.Context, userID string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}
