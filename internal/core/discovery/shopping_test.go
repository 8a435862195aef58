package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/recipe"
)

func newShoppingFixture(t *testing.T) (*ShoppingService, *recipe.MemoryRepository, *pantry.MemoryStore) {
	t.Helper()
	repo := recipe.NewMemoryRepository()
	store := pantry.NewMemoryStore()
	selector := pantry.NewSelector(store, ingredient.DefaultTable(), 3)
	return NewShoppingService(repo, selector), repo, store
}

func TestGenerateMissingBeforeHave(t *testing.T) {
	svc, repo, store := newShoppingFixture(t)
	ctx := context.Background()

	addRecipe(t, repo, recipe.Candidate{
		ID: "rA", Name: "番茄炒蛋",
		SearchSet: []string{"西红柿", "鸡蛋"},
	})
	addRecipe(t, repo, recipe.Candidate{
		ID: "rB", Name: "番茄牛腩",
		SearchSet: []string{"西红柿", "牛肉"},
	})

	seedPantry(t, store, "u1", []pantry.Lot{
		{ID: "l1", UserID: "u1", Name: "番茄", NormalizedName: "西红柿", Amount: 3, CreatedAt: time.Now()},
	})

	entries, err := svc.Generate(ctx, "u1", []string{"rA", "rB"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	// 缺貨在前，按加入順序穩定；持有在後
	if entries[0].Name != "鸡蛋" || entries[0].Status != StatusMissing {
		t.Errorf("entries[0] = %+v, want 鸡蛋/missing", entries[0])
	}
	if entries[1].Name != "牛肉" || entries[1].Status != StatusMissing {
		t.Errorf("entries[1] = %+v, want 牛肉/missing", entries[1])
	}
	if entries[2].Name != "西红柿" || entries[2].Status != StatusHave {
		t.Errorf("entries[2] = %+v, want 西红柿/have", entries[2])
	}

	// 共用食材的來源菜名按出現順序收集
	if len(entries[2].Sources) != 2 || entries[2].Sources[0] != "番茄炒蛋" || entries[2].Sources[1] != "番茄牛腩" {
		t.Errorf("西红柿 sources = %v, want [番茄炒蛋 番茄牛腩]", entries[2].Sources)
	}
}

func TestGenerateSourcesCappedAtThree(t *testing.T) {
	svc, repo, _ := newShoppingFixture(t)
	ctx := context.Background()

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("r%d", i)
		addRecipe(t, repo, recipe.Candidate{
			ID: id, Name: fmt.Sprintf("蛋料理%d", i),
			SearchSet: []string{"鸡蛋"},
		})
		ids = append(ids, id)
	}

	entries, err := svc.Generate(ctx, "u1", ids)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if len(entries[0].Sources) != 3 {
		t.Errorf("sources = %v, want cap at 3", entries[0].Sources)
	}
}

func TestGenerateDuplicateRecipeSourceDeduped(t *testing.T) {
	svc, repo, _ := newShoppingFixture(t)
	ctx := context.Background()

	addRecipe(t, repo, recipe.Candidate{
		ID: "rA", Name: "番茄炒蛋",
		SearchSet: []string{"西红柿", "鸡蛋"},
	})

	entries, err := svc.Generate(ctx, "u1", []string{"rA", "rA"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, e := range entries {
		if len(e.Sources) != 1 {
			t.Errorf("%s sources = %v, want deduped single source", e.Name, e.Sources)
		}
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	svc, _, _ := newShoppingFixture(t)

	entries, err := svc.Generate(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %v, want empty non-nil list", entries)
	}
}

func TestGenerateMissingRecipeIDsSkipped(t *testing.T) {
	svc, repo, _ := newShoppingFixture(t)
	ctx := context.Background()

	addRecipe(t, repo, recipe.Candidate{
		ID: "rA", Name: "清炒青菜",
		SearchSet: []string{"青菜"},
	})

	entries, err := svc.Generate(ctx, "u1", []string{"rA", "no-such-id"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "青菜" {
		t.Errorf("entries = %+v, want single 青菜 entry", entries)
	}
}
