package pantry

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/pkg/common"
)

// SyncModeOverride 全量覆蓋同步
const SyncModeOverride = "override"

// Service 庫存服務：同步與扣減
type Service struct {
	store      Store
	norm       *ingredient.Table
	deductUnit float64
}

// NewService 創建庫存服務
func NewService(store Store, norm *ingredient.Table, deductUnit float64) *Service {
	if deductUnit <= 0 {
		deductUnit = 1.0
	}
	return &Service{
		store:      store,
		norm:       norm,
		deductUnit: deductUnit,
	}
}

// Sync 全量同步庫存
// 目前只支持 override 模式；其他模式視為空操作返回 0（保留原有行為，未引入合併語義）
func (s *Service) Sync(ctx context.Context, userID, mode string, items []ItemInput) (int, error) {
	if mode != SyncModeOverride {
		common.LogWarn("未知的同步模式，跳過處理",
			zap.String("mode", mode),
			zap.String("user_id", userID),
		)
		return 0, nil
	}

	now := time.Now()
	lots := make([]Lot, 0, len(items))
	for i, item := range items {
		amount := item.Amount
		if amount <= 0 {
			amount = 1
		}
		unit := item.Unit
		if unit == "" {
			unit = "个"
		}
		lots = append(lots, Lot{
			ID:             common.GenerateUUID(),
			UserID:         userID,
			Name:           item.Name,
			NormalizedName: s.norm.Normalize(item.Name),
			Amount:         amount,
			Unit:           unit,
			Category:       item.Category,
			SubCategory:    item.SubCategory,
			ExpiryDate:     item.ExpiryDate,
			IsScrap:        item.IsScrap,
			// 同批入庫按列表順序遞增時間戳，保證先進先出次序穩定
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	count, err := s.store.ReplaceAll(ctx, userID, lots)
	if err != nil {
		return 0, err
	}

	common.LogInfo("庫存同步完成",
		zap.String("user_id", userID),
		zap.Int("count", count),
	)
	return count, nil
}

// Deduct 記錄消耗時扣減庫存
// 每個食材扣減固定 1 單位乘以份數；庫存不足時靜默扣到為止，不返回錯誤
func (s *Service) Deduct(ctx context.Context, userID string, ingredients []string, portion float64) error {
	if len(ingredients) == 0 {
		return nil
	}
	if portion <= 0 {
		portion = 1.0
	}

	needs := make(map[string]float64, len(ingredients))
	for _, name := range ingredients {
		std := s.norm.Normalize(name)
		if std == "" {
			continue
		}
		needs[std] = s.deductUnit * portion
	}
	if len(needs) == 0 {
		return nil
	}

	if err := s.store.DeductFIFO(ctx, userID, needs); err != nil {
		return err
	}

	common.LogInfo("庫存扣減完成",
		zap.String("user_id", userID),
		zap.Int("ingredients", len(needs)),
		zap.Float64("portion", portion),
	)
	return nil
}

// List 用戶庫存列表，支持名稱搜索與分類過濾
func (s *Service) List(ctx context.Context, userID, search, category string) ([]Lot, error) {
	lots, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	search = strings.TrimSpace(search)
	category = strings.TrimSpace(category)
	if search == "" && (category == "" || category == "all") {
		return lots, nil
	}

	out := make([]Lot, 0, len(lots))
	for _, lot := range lots {
		if search != "" && !strings.Contains(lot.Name, search) {
			continue
		}
		if category != "" && category != "all" && lot.Category != category {
			continue
		}
		out = append(out, lot)
	}
	return out, nil
}
