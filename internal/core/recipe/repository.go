package recipe

import (
	"context"
)

// Repository 菜譜庫查詢邊界
// 實際存儲由外部系統擁有，本核心只消費查詢結果
type Repository interface {
	// Find 按條件查詢，skip/limit 控制窗口，返回順序穩定
	Find(ctx context.Context, q Query, skip, limit int) ([]Candidate, error)
	// FindByID 按 ID 查詢，不存在時返回 (nil, nil)
	FindByID(ctx context.Context, id string) (*Candidate, error)
	// FindByIDs 按 ID 集合查詢，缺失的 ID 被跳過
	FindByIDs(ctx context.Context, ids []string) ([]Candidate, error)
	// TagFrequency 統計帶有 tag 的菜譜中各標籤出現次數，按次數降序取前 limit 個
	TagFrequency(ctx context.Context, tag string, limit int) ([]TagCount, error)
}
