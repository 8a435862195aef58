package discovery

import (
	"context"
	"fmt"

	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/recipe"
)

// 購物清單狀態
const (
	StatusHave    = "have"
	StatusMissing = "missing"
)

const maxSourceRecipes = 3

// ShoppingListEntry 購物清單中的單個食材
type ShoppingListEntry struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Sources []string `json:"sources"`
}

// ShoppingService 聚合所選菜譜的食材需求並對照庫存
type ShoppingService struct {
	recipes  recipe.Repository
	selector *pantry.Selector
}

// NewShoppingService 創建購物清單服務
func NewShoppingService(recipes recipe.Repository, selector *pantry.Selector) *ShoppingService {
	return &ShoppingService{
		recipes:  recipes,
		selector: selector,
	}
}

// Generate 生成購物清單
// 缺貨項排在持有項之前，各自保持加入順序；空菜譜列表產出空清單
func (s *ShoppingService) Generate(ctx context.Context, userID string, recipeIDs []string) ([]ShoppingListEntry, error) {
	if len(recipeIDs) == 0 {
		return []ShoppingListEntry{}, nil
	}

	candidates, err := s.recipes.FindByIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	// 按首次出現順序收集需求食材與來源菜名
	var order []string
	sources := make(map[string][]string)
	for _, c := range candidates {
		names := c.SearchSet
		if len(names) == 0 {
			names = make([]string, 0, len(c.Ingredients))
			for _, raw := range c.Ingredients {
				if std := s.selector.Normalize(raw); std != "" {
					names = append(names, std)
				}
			}
		}
		for _, name := range names {
			if _, seen := sources[name]; !seen {
				order = append(order, name)
				sources[name] = nil
			}
			sources[name] = appendSource(sources[name], c.Name)
		}
	}

	owned, err := s.selector.IngredientSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user ingredients: %w", err)
	}

	missing := make([]ShoppingListEntry, 0, len(order))
	have := make([]ShoppingListEntry, 0, len(order))
	for _, name := range order {
		entry := ShoppingListEntry{Name: name, Sources: sources[name]}
		if _, ok := owned[name]; ok {
			entry.Status = StatusHave
			have = append(have, entry)
		} else {
			entry.Status = StatusMissing
			missing = append(missing, entry)
		}
	}
	return append(missing, have...), nil
}

// appendSource 去重追加來源菜名，最多保留三個
func appendSource(list []string, name string) []string {
	if len(list) >= maxSourceRecipes {
		return list
	}
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
