package recipe

import (
	"context"
	"testing"
)

func seedRepo(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()

	candidates := []Candidate{
		{ID: "r1", Name: "西红柿炒鸡蛋", SearchSet: []string{"西红柿", "鸡蛋"}, Keywords: []string{"家常", "川菜"}, Calories: 320, CookingTime: 10, Difficulty: "简单"},
		{ID: "r2", Name: "红烧牛肉面", SearchSet: []string{"牛肉", "面条"}, Keywords: []string{"川菜", "麻辣"}, Calories: 680, CookingTime: 40, Difficulty: "中等"},
		{ID: "r3", Name: "清炒青菜", SearchSet: []string{"青菜"}, Keywords: []string{"粤菜", "清淡"}, Calories: 120, CookingTime: 5, Difficulty: "简单"},
		{ID: "r4", Name: "麻婆豆腐", SearchSet: []string{"豆腐", "猪肉"}, Keywords: []string{"川菜", "麻辣"}, Calories: 450, CookingTime: 20, Difficulty: "简单"},
	}
	for _, c := range candidates {
		if _, err := repo.Add(c); err != nil {
			t.Fatalf("Add(%s): %v", c.ID, err)
		}
	}
	return repo
}

func TestAddValidation(t *testing.T) {
	repo := NewMemoryRepository()

	if _, err := repo.Add(Candidate{Name: "", SearchSet: []string{"鸡蛋"}}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := repo.Add(Candidate{Name: "无食材菜"}); err == nil {
		t.Error("expected error for empty search set")
	}
	id, err := repo.Add(Candidate{Name: "有效菜", SearchSet: []string{"鸡蛋"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Error("expected generated id")
	}
}

func TestFindByIngredients(t *testing.T) {
	repo := seedRepo(t)

	got, err := repo.Find(context.Background(), Query{IngredientsAny: []string{"西红柿", "青菜"}}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ID != "r1" || got[1].ID != "r3" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFindFilters(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	// 標籤 + 熱量上限
	got, err := repo.Find(ctx, Query{Tags: []string{"川菜"}, CalorieMax: 500}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	// 嚴格大於
	got, err = repo.Find(ctx, Query{CalorieAbove: 450}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("expected only r2 above 450 kcal, got %v", got)
	}

	// 過敏源排除
	got, err = repo.Find(ctx, Query{IngredientsNone: []string{"鸡蛋"}}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	for _, c := range got {
		if c.ID == "r1" {
			t.Error("r1 contains excluded ingredient but was returned")
		}
	}

	// 黑名單排除
	got, err = repo.Find(ctx, Query{ExcludeIDs: []string{"r1", "r2"}}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 after exclusion, got %d", len(got))
	}

	// 名稱子串
	got, err = repo.Find(ctx, Query{Keyword: "牛肉"}, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("expected r2 by keyword, got %v", got)
	}
}

func TestFindSkipLimit(t *testing.T) {
	repo := seedRepo(t)

	got, err := repo.Find(context.Background(), Query{}, 1, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r3" {
		t.Fatalf("unexpected window result: %v", got)
	}
}

func TestFindByIDs(t *testing.T) {
	repo := seedRepo(t)

	got, err := repo.FindByIDs(context.Background(), []string{"r3", "missing", "r1"})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r1" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestTagFrequency(t *testing.T) {
	repo := seedRepo(t)

	counts, err := repo.TagFrequency(context.Background(), "川菜", 10)
	if err != nil {
		t.Fatalf("TagFrequency: %v", err)
	}
	if len(counts) == 0 {
		t.Fatal("expected tag counts")
	}
	if counts[0].Tag != "川菜" || counts[0].Count != 3 {
		t.Errorf("expected 川菜 x3 first, got %+v", counts[0])
	}
	// 麻辣在 r2、r4 共現兩次
	found := false
	for _, tc := range counts {
		if tc.Tag == "麻辣" {
			found = true
			if tc.Count != 2 {
				t.Errorf("expected 麻辣 count 2, got %d", tc.Count)
			}
		}
	}
	if !found {
		t.Error("expected 麻辣 in tag counts")
	}
}
