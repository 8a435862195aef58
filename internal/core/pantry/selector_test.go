package pantry

import (
	"context"
	"testing"
	"time"

	"recipe-recommender/internal/core/ingredient"
)

func seedSelectorStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	soon := time.Now().AddDate(0, 0, 2)
	later := time.Now().AddDate(0, 0, 30)
	if _, err := store.ReplaceAll(ctx, "u1", []Lot{
		{ID: "a", UserID: "u1", Name: "牛奶", NormalizedName: "牛奶", Amount: 1, ExpiryDate: &soon, CreatedAt: time.Now()},
		{ID: "b", UserID: "u1", Name: "番茄", NormalizedName: "西红柿", Amount: 2, ExpiryDate: &later, CreatedAt: time.Now()},
		{ID: "c", UserID: "u1", Name: "葱头", NormalizedName: "葱头", Amount: 1, IsScrap: true, CreatedAt: time.Now()},
	}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	return store
}

func TestIngredientSet(t *testing.T) {
	store := seedSelectorStore(t)
	sel := NewSelector(store, ingredient.DefaultTable(), 3)

	set, err := sel.IngredientSet(context.Background(), "u1")
	if err != nil {
		t.Fatalf("IngredientSet: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 names, got %d", len(set))
	}
	if _, ok := set["西红柿"]; !ok {
		t.Error("expected canonical 西红柿 in ingredient set")
	}
}

func TestPriorityIngredients(t *testing.T) {
	store := seedSelectorStore(t)
	sel := NewSelector(store, ingredient.DefaultTable(), 3)
	ctx := context.Background()

	// 只要臨期：30 天後到期的番茄不應入選
	set, err := sel.PriorityIngredients(ctx, "u1", true, false)
	if err != nil {
		t.Fatalf("PriorityIngredients: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 expiring ingredient, got %v", set)
	}
	if _, ok := set["牛奶"]; !ok {
		t.Error("expected 牛奶 in expiring set")
	}

	// 只要邊角料
	set, err = sel.PriorityIngredients(ctx, "u1", false, true)
	if err != nil {
		t.Fatalf("PriorityIngredients: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 scrap ingredient, got %v", set)
	}
	if _, ok := set["葱头"]; !ok {
		t.Error("expected 葱头 in scrap set")
	}

	// 兩者取並集
	set, err = sel.PriorityIngredients(ctx, "u1", true, true)
	if err != nil {
		t.Fatalf("PriorityIngredients: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected union of 2, got %v", set)
	}

	// 兩個開關都關：空集合
	set, err = sel.PriorityIngredients(ctx, "u1", false, false)
	if err != nil {
		t.Fatalf("PriorityIngredients: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}
