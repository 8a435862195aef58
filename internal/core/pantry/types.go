package pantry

import (
	"time"
)

// Lot 一筆庫存記錄
// 同一食材可以存在多個批次，各自有數量與入庫時間，扣減時按先進先出
type Lot struct {
	ID             string     `json:"id"`
	UserID         string     `json:"-"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Amount         float64    `json:"amount"`
	Unit           string     `json:"unit"`
	Category       string     `json:"category,omitempty"`
	SubCategory    string     `json:"sub_category,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	IsScrap        bool       `json:"is_scrap"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ItemInput 同步時客戶端提交的單筆食材
type ItemInput struct {
	Name        string     `json:"name" binding:"required"`
	Amount      float64    `json:"amount"`
	Unit        string     `json:"unit"`
	Category    string     `json:"category"`
	SubCategory string     `json:"sub_category"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	IsScrap     bool       `json:"is_scrap"`
}
