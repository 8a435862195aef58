package preference

import (
	"context"
	"sync"
)

// Store 用戶偏好邊界：黑名單與收藏由外部偏好系統擁有
type Store interface {
	// BlockedIDs 用戶拉黑的菜譜 ID 列表
	BlockedIDs(ctx context.Context, userID string) ([]string, error)
	// FavoriteIDs 用戶收藏的菜譜 ID 列表
	FavoriteIDs(ctx context.Context, userID string) ([]string, error)
}

// MemoryStore 記憶體偏好存儲
type MemoryStore struct {
	mu        sync.RWMutex
	blocked   map[string][]string
	favorites map[string][]string
}

// NewMemoryStore 創建記憶體偏好存儲
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blocked:   make(map[string][]string),
		favorites: make(map[string][]string),
	}
}

// Block 將菜譜加入用戶黑名單
func (s *MemoryStore) Block(userID, recipeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked[userID] = append(s.blocked[userID], recipeID)
}

// Favorite 將菜譜加入用戶收藏
func (s *MemoryStore) Favorite(userID, recipeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[userID] = append(s.favorites[userID], recipeID)
}

// BlockedIDs 用戶拉黑的菜譜 ID 列表
func (s *MemoryStore) BlockedIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.blocked[userID]))
	copy(out, s.blocked[userID])
	return out, nil
}

// FavoriteIDs 用戶收藏的菜譜 ID 列表
func (s *MemoryStore) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.favorites[userID]))
	copy(out, s.favorites[userID])
	return out, nil
}
