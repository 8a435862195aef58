package pantry

import (
	"context"
	"time"

	"recipe-recommender/internal/core/ingredient"
)

// Selector 由當前庫存推導食材集合，供推薦算法使用
type Selector struct {
	store            Store
	norm             *ingredient.Table
	expiryWindowDays int
}

// NewSelector 創建庫存選擇器
func NewSelector(store Store, norm *ingredient.Table, expiryWindowDays int) *Selector {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 3
	}
	return &Selector{
		store:            store,
		norm:             norm,
		expiryWindowDays: expiryWindowDays,
	}
}

// IngredientSet 用戶擁有的食材標準名集合
func (s *Selector) IngredientSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	lots, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(lots))
	for _, lot := range lots {
		set[lot.NormalizedName] = struct{}{}
	}
	return set, nil
}

// Normalize 將食材名映射為標準名
func (s *Selector) Normalize(name string) string {
	return s.norm.Normalize(name)
}

// PriorityIngredients 優先消耗食材集合（臨期與邊角料）
// 兩個開關都關閉時返回空集合
func (s *Selector) PriorityIngredients(ctx context.Context, userID string, wantExpiring, wantScrap bool) (map[string]struct{}, error) {
	set := make(map[string]struct{})

	if wantExpiring {
		deadline := time.Now().AddDate(0, 0, s.expiryWindowDays)
		lots, err := s.store.ListExpiring(ctx, userID, deadline)
		if err != nil {
			return nil, err
		}
		for _, lot := range lots {
			set[lot.NormalizedName] = struct{}{}
		}
	}

	if wantScrap {
		lots, err := s.store.ListScrap(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, lot := range lots {
			set[lot.NormalizedName] = struct{}{}
		}
	}

	return set, nil
}
