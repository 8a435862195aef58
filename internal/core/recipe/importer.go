package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// sourceRecipe 菜譜來源的原始條目格式
type sourceRecipe struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	RecipeIngredient []string `json:"recipeIngredient"`
	SearchSet        []string `json:"ingredients_search"`
	Keywords         []string `json:"keywords"`
	Calories         int      `json:"calories"`
	CookingTime      int      `json:"cooking_time"`
	Difficulty       string   `json:"difficulty"`
	ImageURL         string   `json:"image_url"`
}

// sourcePage 菜譜來源的分頁響應
type sourcePage struct {
	Recipes []sourceRecipe `json:"recipes"`
	HasMore bool           `json:"has_more"`
}

// Importer 菜譜目錄匯入器
// 啟動時從配置的來源分頁拉取菜譜，逐條驗證後寫入菜譜庫
// 單條格式錯誤只跳過該條，不中斷整批匯入
type Importer struct {
	client   *resty.Client
	repo     *MemoryRepository
	norm     *ingredient.Table
	pageSize int
}

// NewImporter 創建菜譜匯入器
func NewImporter(cfg config.RecipeSourceConfig, repo *MemoryRepository, norm *ingredient.Table) *Importer {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Importer{
		client:   client,
		repo:     repo,
		norm:     norm,
		pageSize: cfg.PageSize,
	}
}

// Run 執行匯入，返回成功入庫的菜譜數
func (i *Importer) Run(ctx context.Context) (int, error) {
	imported := 0
	skipped := 0

	for page := 1; ; page++ {
		resp, err := i.client.R().
			SetContext(ctx).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("page_size", strconv.Itoa(i.pageSize)).
			Get("")
		if err != nil {
			return imported, fmt.Errorf("failed to fetch recipe page %d: %w", page, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return imported, fmt.Errorf("recipe source returned status %d on page %d", resp.StatusCode(), page)
		}

		var body sourcePage
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return imported, fmt.Errorf("failed to parse recipe page %d: %w", page, err)
		}

		for _, src := range body.Recipes {
			c, err := i.convert(src)
			if err != nil {
				// 單條壞數據跳過，繼續處理其餘
				skipped++
				common.LogWarn("跳過格式錯誤的菜譜",
					zap.String("name", src.Name),
					zap.Error(err),
				)
				continue
			}
			if _, err := i.repo.Add(c); err != nil {
				skipped++
				common.LogWarn("菜譜入庫失敗，已跳過",
					zap.String("name", src.Name),
					zap.Error(err),
				)
				continue
			}
			imported++
		}

		if !body.HasMore || len(body.Recipes) == 0 {
			break
		}
	}

	common.LogInfo("菜譜目錄匯入完成",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
	)
	return imported, nil
}

// convert 將來源條目轉換為候選並歸一化搜尋集合
func (i *Importer) convert(src sourceRecipe) (Candidate, error) {
	if src.Name == "" {
		return Candidate{}, fmt.Errorf("missing recipe name")
	}

	raw := src.SearchSet
	if len(raw) == 0 {
		raw = src.RecipeIngredient
	}
	if len(raw) == 0 {
		return Candidate{}, fmt.Errorf("recipe has no ingredients")
	}

	searchSet := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		std := i.norm.Normalize(name)
		if std == "" {
			continue
		}
		if _, dup := seen[std]; dup {
			continue
		}
		seen[std] = struct{}{}
		searchSet = append(searchSet, std)
	}
	if len(searchSet) == 0 {
		return Candidate{}, fmt.Errorf("recipe has no usable ingredients")
	}

	return Candidate{
		ID:          src.ID,
		Name:        src.Name,
		Ingredients: src.RecipeIngredient,
		SearchSet:   searchSet,
		Keywords:    src.Keywords,
		Calories:    src.Calories,
		CookingTime: src.CookingTime,
		Difficulty:  src.Difficulty,
		ImageURL:    src.ImageURL,
	}, nil
}
