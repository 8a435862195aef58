package pantry

import (
	"context"
	"time"
)

// Store 庫存存儲邊界
// ReplaceAll 與 DeductFIFO 必須各自作為原子操作執行：
// 同一用戶的並發扣減需要被序列化，批次數量不得為負，歸零即刪除
type Store interface {
	// ListByUser 用戶全部批次，按入庫時間升序
	ListByUser(ctx context.Context, userID string) ([]Lot, error)
	// ListExpiring 過期日在 deadline 當日或之前的批次
	ListExpiring(ctx context.Context, userID string, deadline time.Time) ([]Lot, error)
	// ListScrap 邊角料批次
	ListScrap(ctx context.Context, userID string) ([]Lot, error)
	// ReplaceAll 原子替換用戶全部庫存，返回插入筆數
	ReplaceAll(ctx context.Context, userID string, lots []Lot) (int, error)
	// DeductFIFO 按歸一化名扣減庫存：每個名稱扣 needs[name] 個單位，
	// 最早入庫的批次先扣，跨批次結轉，庫存不足時靜默扣到為止
	DeductFIFO(ctx context.Context, userID string, needs map[string]float64) error
}
