package discovery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/core/preference"
	"recipe-recommender/internal/core/profile"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
)

// PopularCuisines 第一步的固定菜系列表
var PopularCuisines = []string{"川菜", "粤菜", "湘菜", "鲁菜", "日式", "西餐", "东北菜", "西北菜"}

// 不構成過濾條件的通用口味
var genericFlavors = map[string]struct{}{
	"热门": {},
	"家常": {},
}

const fallbackFlavor = "热门"

// 轉盤候選理由
const (
	reasonHealth     = "健康轻食"
	reasonPreference = "口味匹配"
	reasonIndulgence = "偶尔放纵"
	reasonTopUp      = "为您推荐"
)

// 候選來源池
const (
	poolHealth     = "health"
	poolPreference = "preference"
	poolIndulgence = "indulgence"
	poolFallback   = "fallback"
)

const (
	wheelResultSize   = 6
	flavorOptionLimit = 10
)

// WheelCandidate 轉盤第三步產出的單個候選
type WheelCandidate struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Calories    int    `json:"calories"`
	CookingTime int    `json:"cooking_time"`
	MatchReason string `json:"match_reason"`
	Pool        string `json:"pool"`
}

// WheelEngine 三步轉盤引擎：菜系 → 口味 → 加權抽樣候選
// 無跨調用狀態，每一步由調用方帶入前序選擇
type WheelEngine struct {
	recipes         recipe.Repository
	prefs           preference.Store
	profiles        profile.Store
	norm            *ingredient.Table
	poolFetchLimit  int
	defaultMealKcal int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWheelEngine 創建轉盤引擎
// rng 傳 nil 時使用時間種子
func NewWheelEngine(recipes recipe.Repository, prefs preference.Store, profiles profile.Store, norm *ingredient.Table, poolFetchLimit, defaultMealKcal int, rng *rand.Rand) *WheelEngine {
	if poolFetchLimit <= 0 {
		poolFetchLimit = 50
	}
	if defaultMealKcal <= 0 {
		defaultMealKcal = 600
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &WheelEngine{
		recipes:         recipes,
		prefs:           prefs,
		profiles:        profiles,
		norm:            norm,
		poolFetchLimit:  poolFetchLimit,
		defaultMealKcal: defaultMealKcal,
		rng:             rng,
	}
}

// Cuisines 第一步：固定菜系列表
func (e *WheelEngine) Cuisines() []string {
	out := make([]string, len(PopularCuisines))
	copy(out, PopularCuisines)
	return out
}

// FlavorOptions 第二步：統計所選菜系下的標籤共現頻率
// 先取共現頻率前十，再剔除菜系類標籤；剩餘不足兩個時回退到通用口味
// 菜系自身在自己的分組裡必然佔據一個名額，所以結果最多九個
func (e *WheelEngine) FlavorOptions(ctx context.Context, cuisine string) ([]string, error) {
	counts, err := e.recipes.TagFrequency(ctx, cuisine, flavorOptionLimit)
	if err != nil {
		return nil, err
	}

	cuisineSet := make(map[string]struct{}, len(PopularCuisines))
	for _, c := range PopularCuisines {
		cuisineSet[c] = struct{}{}
	}

	options := make([]string, 0, len(counts))
	for _, tc := range counts {
		if tc.Tag == cuisine {
			continue
		}
		if _, isCuisine := cuisineSet[tc.Tag]; isCuisine {
			continue
		}
		options = append(options, tc.Tag)
	}

	if len(options) < 2 {
		return []string{fallbackFlavor}, nil
	}
	return options, nil
}

// Candidates 第三步：按健康/口味/放縱三個池加權抽樣，補齊到六個
func (e *WheelEngine) Candidates(ctx context.Context, userID, cuisine, flavor string) ([]WheelCandidate, error) {
	base := e.baseQuery(ctx, userID, cuisine, flavor)
	threshold := e.mealThreshold(ctx, userID)

	seen := make(map[string]struct{}, wheelResultSize)
	out := make([]WheelCandidate, 0, wheelResultSize)

	healthQ := base
	healthQ.CalorieMax = threshold
	out = e.drawInto(ctx, out, healthQ, 3, seen, reasonHealth, poolHealth)

	out = e.drawInto(ctx, out, base, 2, seen, reasonPreference, poolPreference)

	indulgeQ := base
	indulgeQ.CalorieAbove = threshold
	out = e.drawInto(ctx, out, indulgeQ, 1, seen, reasonIndulgence, poolIndulgence)

	if remaining := wheelResultSize - len(out); remaining > 0 {
		out = e.drawInto(ctx, out, base, remaining, seen, reasonTopUp, poolFallback)
	}
	return out, nil
}

// baseQuery 構建三個池共用的基礎過濾
// 偏好/檔案讀取失敗視為降級：記警告後按無偏好繼續
func (e *WheelEngine) baseQuery(ctx context.Context, userID, cuisine, flavor string) recipe.Query {
	var q recipe.Query

	blocked, err := e.prefs.BlockedIDs(ctx, userID)
	if err != nil {
		common.LogWarn("讀取屏蔽列表失敗，按空處理",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else {
		q.ExcludeIDs = blocked
	}

	if cuisine != "" {
		q.TagsAll = append(q.TagsAll, cuisine)
	}
	if flavor != "" {
		if _, generic := genericFlavors[flavor]; !generic {
			q.TagsAll = append(q.TagsAll, flavor)
		}
	}

	prof, err := e.profiles.Get(ctx, userID)
	if err != nil {
		common.LogWarn("讀取用戶檔案失敗，忽略過敏原",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else if prof != nil {
		for _, a := range prof.Allergens {
			if std := e.norm.Normalize(a); std != "" {
				q.IngredientsNone = append(q.IngredientsNone, std)
			}
		}
	}
	return q
}

// mealThreshold 單餐熱量閾值：日限額三分之一，無檔案時取默認值
func (e *WheelEngine) mealThreshold(ctx context.Context, userID string) int {
	prof, err := e.profiles.Get(ctx, userID)
	if err != nil || prof == nil || prof.DailyKcalLimit <= 0 {
		return e.defaultMealKcal
	}
	return prof.DailyKcalLimit / 3
}

// drawInto 從單個池的查詢窗口中無放回均勻抽樣 count 個
// 查詢失敗不中斷整體流程
func (e *WheelEngine) drawInto(ctx context.Context, out []WheelCandidate, q recipe.Query, count int, seen map[string]struct{}, reason, pool string) []WheelCandidate {
	if count <= 0 {
		return out
	}

	candidates, err := e.recipes.Find(ctx, q, 0, e.poolFetchLimit)
	if err != nil {
		common.LogWarn("轉盤抽樣池查詢失敗",
			zap.String("pool", pool),
			zap.Error(err),
		)
		return out
	}

	fresh := make([]recipe.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return out
	}

	e.mu.Lock()
	order := e.rng.Perm(len(fresh))
	e.mu.Unlock()

	for _, idx := range order {
		if count == 0 {
			break
		}
		c := fresh[idx]
		seen[c.ID] = struct{}{}
		out = append(out, WheelCandidate{
			ID:          c.ID,
			Type:        "recipe",
			Name:        c.Name,
			Image:       c.ImageURL,
			Calories:    c.Calories,
			CookingTime: c.CookingTime,
			MatchReason: reason,
			Pool:        pool,
		})
		count--
	}
	return out
}
