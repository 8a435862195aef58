package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository 記憶體菜譜庫
// 作為外部菜譜庫在本進程內的實現，匯入器寫入、各引擎查詢
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Candidate
}

// NewMemoryRepository 創建記憶體菜譜庫
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]Candidate),
	}
}

// Add 加入一個菜譜候選，在邊界完成驗證
// 名稱與食材集合為必填；ID 缺失時自動生成
func (r *MemoryRepository) Add(c Candidate) (string, error) {
	if strings.TrimSpace(c.Name) == "" {
		return "", fmt.Errorf("recipe name is required")
	}
	if len(c.SearchSet) == 0 {
		return "", fmt.Errorf("recipe %q has no ingredient search set", c.Name)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.byID[c.ID] = c
	return c.ID, nil
}

// Len 當前菜譜數量
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Find 按條件查詢，保持插入順序
func (r *MemoryRepository) Find(ctx context.Context, q Query, skip, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Candidate
	matched := 0
	for _, id := range r.order {
		c := r.byID[id]
		if !matchQuery(c, q) {
			continue
		}
		if matched < skip {
			matched++
			continue
		}
		matched++
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindByID 按 ID 查詢
func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byID[id]; ok {
		return &c, nil
	}
	return nil, nil
}

// FindByIDs 按 ID 集合查詢，保持輸入順序，缺失的 ID 被跳過
func (r *MemoryRepository) FindByIDs(ctx context.Context, ids []string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// TagFrequency 標籤共現統計：在帶有 tag 的菜譜內，按各標籤出現次數降序取前 limit 個
func (r *MemoryRepository) TagFrequency(ctx context.Context, tag string, limit int) ([]TagCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, id := range r.order {
		c := r.byID[id]
		if !containsString(c.Keywords, tag) {
			continue
		}
		for _, kw := range c.Keywords {
			counts[kw]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for kw, n := range counts {
		out = append(out, TagCount{Tag: kw, Count: n})
	}
	// 次數降序，同次數按標籤名排序保持結果穩定
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchQuery 檢查候選是否滿足查詢條件
func matchQuery(c Candidate, q Query) bool {
	if len(q.IngredientsAny) > 0 && !intersects(c.SearchSet, q.IngredientsAny) {
		return false
	}
	if len(q.IngredientsNone) > 0 && intersects(c.SearchSet, q.IngredientsNone) {
		return false
	}
	for _, id := range q.ExcludeIDs {
		if c.ID == id {
			return false
		}
	}
	if len(q.Tags) > 0 {
		any := false
		for _, t := range q.Tags {
			if containsString(c.Keywords, t) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, t := range q.TagsAll {
		if !containsString(c.Keywords, t) {
			return false
		}
	}
	if q.Keyword != "" && !strings.Contains(c.Name, q.Keyword) {
		return false
	}
	if q.Difficulty != "" && c.Difficulty != q.Difficulty {
		return false
	}
	if q.CalorieMin > 0 && c.Calories < q.CalorieMin {
		return false
	}
	if q.CalorieMax > 0 && c.Calories > q.CalorieMax {
		return false
	}
	if q.CalorieAbove > 0 && c.Calories <= q.CalorieAbove {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
