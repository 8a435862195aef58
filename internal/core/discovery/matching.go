package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
)

// 排序鍵
const (
	SortByMatchScore = "match_score"
	SortByCalories   = "calories"
	SortByTime       = "time"
)

// 匹配理由
const (
	reasonPriority  = "消耗临期/边角料"
	reasonHighMatch = "匹配度高，缺%d样"
	reasonDefault   = "猜你喜欢"
)

const (
	defaultPageSize = 20
	fetchWindow     = 5
)

// MatchFilters 推薦過濾條件，非法值在解析階段被忽略而不報錯
type MatchFilters struct {
	CleanupMode bool     `json:"cleanup_mode"` // 優先消耗臨期食材
	ScrapMode   bool     `json:"scrap_mode"`   // 優先消耗邊角料
	Tags        []string `json:"tags"`
	Keyword     string   `json:"keyword"`
	Difficulty  string   `json:"difficulty"`
	CalorieMin  int      `json:"calorie_min"`
	CalorieMax  int      `json:"calorie_max"`
}

// UnmarshalJSON 容錯解析過濾條件
// 單個字段類型不符時只丟棄該字段，整體非對象時得到零值，都不報錯
func (f *MatchFilters) UnmarshalJSON(data []byte) error {
	*f = MatchFilters{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	decodeBool(raw["cleanup_mode"], &f.CleanupMode)
	decodeBool(raw["scrap_mode"], &f.ScrapMode)
	decodeStrings(raw["tags"], &f.Tags)
	decodeString(raw["keyword"], &f.Keyword)
	decodeString(raw["difficulty"], &f.Difficulty)
	decodeInt(raw["calorie_min"], &f.CalorieMin)
	decodeInt(raw["calorie_max"], &f.CalorieMax)
	return nil
}

func decodeBool(data json.RawMessage, dst *bool) {
	if data == nil {
		return
	}
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*dst = v
	}
}

func decodeString(data json.RawMessage, dst *string) {
	if data == nil {
		return
	}
	var v string
	if err := json.Unmarshal(data, &v); err == nil {
		*dst = v
	}
}

func decodeStrings(data json.RawMessage, dst *[]string) {
	if data == nil {
		return
	}
	var v []string
	if err := json.Unmarshal(data, &v); err == nil {
		*dst = v
	}
}

// decodeInt 兼容數字和數字字符串兩種寫法
func decodeInt(data json.RawMessage, dst *int) {
	if data == nil {
		return
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*dst = n
		return
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
		}
	}
}

// IngredientStatus 候選菜譜中單個食材的持有狀態
type IngredientStatus struct {
	Name     string `json:"name"`
	InFridge bool   `json:"in_fridge"`
}

// MatchResult 單個候選的評分結果
type MatchResult struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	MatchScore         int                `json:"match_score"`
	MatchedIngredients []string           `json:"matched_ingredients"`
	MissingIngredients []string           `json:"missing_ingredients"`
	CookingTime        int                `json:"cooking_time"`
	Difficulty         string             `json:"difficulty"`
	Calories           int                `json:"calories"`
	Image              string             `json:"image"`
	Ingredients        []IngredientStatus `json:"ingredients"`
	MatchReason        string             `json:"match_reason"`
	Tags               []string           `json:"tags"`
}

// MatchingService 菜譜匹配引擎
// 以用戶庫存對候選菜譜評分排序，臨期/邊角料模式下加權
type MatchingService struct {
	recipes  recipe.Repository
	selector *pantry.Selector
}

// NewMatchingService 創建匹配引擎
func NewMatchingService(recipes recipe.Repository, selector *pantry.Selector) *MatchingService {
	return &MatchingService{
		recipes:  recipes,
		selector: selector,
	}
}

// Recommend 推薦菜譜
// 返回一頁評分結果與是否還有更多
func (s *MatchingService) Recommend(ctx context.Context, userID string, page, pageSize int, sortBy string, filters MatchFilters) ([]MatchResult, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	// 1. 庫存食材集合
	userSet, err := s.selector.IngredientSet(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load user ingredients: %w", err)
	}

	// 2. 特殊模式的優先集合
	priorityMode := filters.CleanupMode || filters.ScrapMode
	var prioritySet map[string]struct{}
	if priorityMode {
		prioritySet, err = s.selector.PriorityIngredients(ctx, userID, filters.CleanupMode, filters.ScrapMode)
		if err != nil {
			return nil, false, fmt.Errorf("load priority ingredients: %w", err)
		}
	}

	// 3. 構建查詢：優先集合非空時用它過濾，否則用全部庫存；庫存為空時不按食材過濾
	q := recipe.Query{
		Tags:       filters.Tags,
		Keyword:    filters.Keyword,
		Difficulty: filters.Difficulty,
	}
	if priorityMode && len(prioritySet) > 0 {
		q.IngredientsAny = setToSortedList(prioritySet)
	} else if len(userSet) > 0 {
		q.IngredientsAny = setToSortedList(userSet)
	}
	if filters.CalorieMin > 0 {
		q.CalorieMin = filters.CalorieMin
	}
	if filters.CalorieMax > 0 {
		q.CalorieMax = filters.CalorieMax
	}

	// 4. 取 5 倍頁大小的窗口供內存重排序
	skip := (page - 1) * pageSize
	candidates, err := s.recipes.Find(ctx, q, skip, pageSize*fetchWindow)
	if err != nil {
		return nil, false, fmt.Errorf("query recipes: %w", err)
	}

	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		// 單條壞數據跳過，不中斷整批
		if len(c.SearchSet) == 0 {
			common.LogDebug("跳過無食材列表的候選",
				zap.String("recipe_id", c.ID),
			)
			continue
		}
		results = append(results, s.score(c, userSet, prioritySet, priorityMode))
	}

	// 5. 內存排序
	switch sortBy {
	case SortByCalories:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Calories < results[j].Calories
		})
	case SortByTime:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CookingTime < results[j].CookingTime
		})
	default:
		// 未知排序鍵回退到分數降序
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].MatchScore > results[j].MatchScore
		})
	}

	if len(results) > pageSize {
		results = results[:pageSize]
	}
	hasMore := len(results) == pageSize
	return results, hasMore, nil
}

// score 對單個候選評分
func (s *MatchingService) score(c recipe.Candidate, userSet, prioritySet map[string]struct{}, priorityMode bool) MatchResult {
	var matched, missing []string
	for _, name := range c.SearchSet {
		if _, ok := userSet[name]; ok {
			matched = append(matched, name)
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	score := int(math.Round(float64(len(matched)) / float64(len(c.SearchSet)) * 100))

	// 臨期/邊角料命中加 20 分
	priorityHit := false
	if priorityMode && len(prioritySet) > 0 {
		for _, name := range c.SearchSet {
			if _, ok := prioritySet[name]; ok {
				priorityHit = true
				break
			}
		}
		if priorityHit {
			score += 20
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	reason := reasonDefault
	if priorityHit {
		reason = reasonPriority
	} else if score >= 80 {
		reason = fmt.Sprintf(reasonHighMatch, len(missing))
	}

	// 食材持有明細，沿用原始名展示
	rawNames := c.Ingredients
	if len(rawNames) == 0 {
		rawNames = c.SearchSet
	}
	detail := make([]IngredientStatus, 0, len(rawNames))
	for _, raw := range rawNames {
		std := s.selector.Normalize(raw)
		_, inFridge := userSet[std]
		detail = append(detail, IngredientStatus{Name: raw, InFridge: inFridge})
	}

	tags := c.Keywords
	if len(tags) > 3 {
		tags = tags[:3]
	}

	return MatchResult{
		ID:                 c.ID,
		Name:               c.Name,
		MatchScore:         score,
		MatchedIngredients: matched,
		MissingIngredients: missing,
		CookingTime:        c.CookingTime,
		Difficulty:         c.Difficulty,
		Calories:           c.Calories,
		Image:              c.ImageURL,
		Ingredients:        detail,
		MatchReason:        reason,
		Tags:               tags,
	}
}

func setToSortedList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
