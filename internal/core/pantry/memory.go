package pantry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore 記憶體庫存
// 未配置資料庫時的預設實現，讀寫鎖保證同一用戶的同步與扣減互斥
type MemoryStore struct {
	mu   sync.RWMutex
	lots map[string][]Lot // userID -> 批次列表，按入庫順序
}

// NewMemoryStore 創建記憶體庫存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lots: make(map[string][]Lot),
	}
}

// ListByUser 用戶全部批次，按入庫時間升序
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Lot, len(s.lots[userID]))
	copy(out, s.lots[userID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListExpiring 過期日在 deadline 當日或之前的批次
func (s *MemoryStore) ListExpiring(ctx context.Context, userID string, deadline time.Time) ([]Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Lot
	for _, lot := range s.lots[userID] {
		if lot.ExpiryDate != nil && !lot.ExpiryDate.After(deadline) {
			out = append(out, lot)
		}
	}
	return out, nil
}

// ListScrap 邊角料批次
func (s *MemoryStore) ListScrap(ctx context.Context, userID string) ([]Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Lot
	for _, lot := range s.lots[userID] {
		if lot.IsScrap {
			out = append(out, lot)
		}
	}
	return out, nil
}

// ReplaceAll 原子替換用戶全部庫存
func (s *MemoryStore) ReplaceAll(ctx context.Context, userID string, lots []Lot) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make([]Lot, len(lots))
	copy(replaced, lots)
	s.lots[userID] = replaced
	return len(replaced), nil
}

// DeductFIFO 按歸一化名先進先出扣減
func (s *MemoryStore) DeductFIFO(ctx context.Context, userID string, needs map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(needs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots := s.lots[userID]

	// 名稱排序後處理，結果與 map 迭代順序無關
	names := make([]string, 0, len(needs))
	for name := range needs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		needed := needs[name]
		if needed <= 0 {
			continue
		}

		// 匹配批次按入庫時間升序
		idx := make([]int, 0, 4)
		for i := range lots {
			if lots[i].NormalizedName == name {
				idx = append(idx, i)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return lots[idx[a]].CreatedAt.Before(lots[idx[b]].CreatedAt)
		})

		for _, i := range idx {
			if needed <= 0 {
				break
			}
			if lots[i].Amount > needed {
				lots[i].Amount -= needed
				needed = 0
			} else {
				needed -= lots[i].Amount
				lots[i].Amount = 0 // 歸零批次在下方統一刪除
			}
		}
	}

	// 刪除歸零批次
	kept := lots[:0]
	for _, lot := range lots {
		if lot.Amount > 0 {
			kept = append(kept, lot)
		}
	}
	s.lots[userID] = kept
	return nil
}
