package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/core/preference"
	"recipe-recommender/internal/core/profile"
	"recipe-recommender/internal/core/recipe"
)

func newWheelFixture(t *testing.T) (*WheelEngine, *recipe.MemoryRepository, *preference.MemoryStore, *profile.MemoryStore) {
	t.Helper()
	repo := recipe.NewMemoryRepository()
	prefs := preference.NewMemoryStore()
	profiles := profile.NewMemoryStore()
	norm := ingredient.DefaultTable()
	rng := rand.New(rand.NewSource(1))
	engine := NewWheelEngine(repo, prefs, profiles, norm, 50, 600, rng)
	return engine, repo, prefs, profiles
}

func TestCuisinesFixedList(t *testing.T) {
	engine, _, _, _ := newWheelFixture(t)

	got := engine.Cuisines()
	if len(got) != len(PopularCuisines) {
		t.Fatalf("len(Cuisines) = %d, want %d", len(got), len(PopularCuisines))
	}
	if got[0] != "川菜" {
		t.Errorf("Cuisines[0] = %s, want 川菜", got[0])
	}

	// 返回副本，調用方修改不影響固定列表
	got[0] = "改过"
	if PopularCuisines[0] != "川菜" {
		t.Errorf("PopularCuisines mutated to %s", PopularCuisines[0])
	}
}

func TestFlavorOptionsExcludesCuisines(t *testing.T) {
	engine, repo, _, _ := newWheelFixture(t)
	ctx := context.Background()

	// 麻辣 ×3、下饭 ×2，粤菜是菜系標籤應被剔除
	addRecipe(t, repo, recipe.Candidate{ID: "a", Name: "麻婆豆腐", SearchSet: []string{"豆腐"}, Keywords: []string{"川菜", "麻辣", "下饭"}})
	addRecipe(t, repo, recipe.Candidate{ID: "b", Name: "水煮鱼", SearchSet: []string{"鱼"}, Keywords: []string{"川菜", "麻辣", "粤菜"}})
	addRecipe(t, repo, recipe.Candidate{ID: "c", Name: "辣子鸡", SearchSet: []string{"鸡肉"}, Keywords: []string{"川菜", "麻辣", "下饭"}})

	options, err := engine.FlavorOptions(ctx, "川菜")
	if err != nil {
		t.Fatalf("FlavorOptions: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("options = %v, want [麻辣 下饭]", options)
	}
	if options[0] != "麻辣" || options[1] != "下饭" {
		t.Errorf("options = %v, want [麻辣 下饭]", options)
	}
}

func TestFlavorOptionsFallback(t *testing.T) {
	engine, repo, _, _ := newWheelFixture(t)
	ctx := context.Background()

	// 僅一個非菜系標籤，不足兩個時回退
	addRecipe(t, repo, recipe.Candidate{ID: "a", Name: "白切鸡", SearchSet: []string{"鸡肉"}, Keywords: []string{"粤菜", "清淡"}})

	options, err := engine.FlavorOptions(ctx, "粤菜")
	if err != nil {
		t.Fatalf("FlavorOptions: %v", err)
	}
	if len(options) != 1 || options[0] != "热门" {
		t.Errorf("options = %v, want [热门]", options)
	}
}

func TestFlavorOptionsTopTenWindowBeforeFilter(t *testing.T) {
	engine, repo, _, _ := newWheelFixture(t)
	ctx := context.Background()

	// 11 個非菜系標籤，頻率嚴格遞減：标签1 最高、标签11 最低
	// 共現窗口先取前十（菜系自身佔一席），過濾後剩九個
	for i := 1; i <= 11; i++ {
		for n := 0; n < 12-i; n++ {
			addRecipe(t, repo, recipe.Candidate{
				ID:        fmt.Sprintf("r%d-%d", i, n),
				Name:      fmt.Sprintf("菜%d-%d", i, n),
				SearchSet: []string{"鸡蛋"},
				Keywords:  []string{"湘菜", fmt.Sprintf("标签%d", i)},
			})
		}
	}

	options, err := engine.FlavorOptions(ctx, "湘菜")
	if err != nil {
		t.Fatalf("FlavorOptions: %v", err)
	}
	if len(options) != 9 {
		t.Fatalf("len(options) = %d, want 9 (top-10 window minus the cuisine)", len(options))
	}
	for i, want := 0, 1; i < len(options); i, want = i+1, want+1 {
		if options[i] != fmt.Sprintf("标签%d", want) {
			t.Errorf("options[%d] = %s, want 标签%d", i, options[i], want)
		}
	}
	// 标签10、标签11 排在窗口之外，即使過濾後有空位也不遞補
	for _, opt := range options {
		if opt == "标签10" || opt == "标签11" {
			t.Errorf("option %s is outside the top-10 window", opt)
		}
	}
}

func TestWheelCandidatesUniqueAndBounded(t *testing.T) {
	engine, repo, _, _ := newWheelFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		addRecipe(t, repo, recipe.Candidate{
			ID:        fmt.Sprintf("r%d", i),
			Name:      fmt.Sprintf("川菜%d", i),
			SearchSet: []string{"猪肉"},
			Keywords:  []string{"川菜"},
			Calories:  200 + i*50,
		})
	}

	out, err := engine.Candidates(ctx, "u1", "川菜", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("len(out) = %d, want 6", len(out))
	}

	seen := make(map[string]struct{})
	for _, c := range out {
		if _, dup := seen[c.ID]; dup {
			t.Errorf("duplicate candidate id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Type != "recipe" {
			t.Errorf("candidate %s type = %s, want recipe", c.ID, c.Type)
		}
		if c.MatchReason == "" || c.Pool == "" {
			t.Errorf("candidate %s missing reason/pool label", c.ID)
		}
	}
}

func TestWheelCandidatesRespectBlockAndAllergen(t *testing.T) {
	engine, repo, prefs, profiles := newWheelFixture(t)
	ctx := context.Background()

	addRecipe(t, repo, recipe.Candidate{ID: "blocked", Name: "不想吃", SearchSet: []string{"猪肉"}, Keywords: []string{"川菜"}, Calories: 300})
	addRecipe(t, repo, recipe.Candidate{ID: "allergic", Name: "番茄牛腩", SearchSet: []string{"西红柿", "牛肉"}, Keywords: []string{"川菜"}, Calories: 400})
	addRecipe(t, repo, recipe.Candidate{ID: "ok1", Name: "鱼香肉丝", SearchSet: []string{"猪肉"}, Keywords: []string{"川菜"}, Calories: 350})
	addRecipe(t, repo, recipe.Candidate{ID: "ok2", Name: "宫保鸡丁", SearchSet: []string{"鸡肉"}, Keywords: []string{"川菜"}, Calories: 450})

	prefs.Block("u1", "blocked")
	// 過敏源以別名聲明，匹配走標準名
	profiles.Put(profile.Profile{UserID: "u1", DailyKcalLimit: 1800, Allergens: []string{"番茄"}})

	out, err := engine.Candidates(ctx, "u1", "川菜", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (pool exhausted)", len(out))
	}
	for _, c := range out {
		if c.ID == "blocked" {
			t.Errorf("blocked recipe returned")
		}
		if c.ID == "allergic" {
			t.Errorf("allergen recipe returned")
		}
	}
}

func TestWheelHealthPoolHonorsCalorieThreshold(t *testing.T) {
	engine, repo, _, profiles := newWheelFixture(t)
	ctx := context.Background()

	// 日限 900 → 單餐閾值 300
	profiles.Put(profile.Profile{UserID: "u1", DailyKcalLimit: 900})

	for i := 0; i < 5; i++ {
		addRecipe(t, repo, recipe.Candidate{
			ID: fmt.Sprintf("light%d", i), Name: fmt.Sprintf("轻食%d", i),
			SearchSet: []string{"青菜"}, Keywords: []string{"西餐"}, Calories: 150,
		})
		addRecipe(t, repo, recipe.Candidate{
			ID: fmt.Sprintf("heavy%d", i), Name: fmt.Sprintf("硬菜%d", i),
			SearchSet: []string{"猪肉"}, Keywords: []string{"西餐"}, Calories: 700,
		})
	}

	out, err := engine.Candidates(ctx, "u1", "西餐", "")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("len(out) = %d, want 6", len(out))
	}

	for _, c := range out {
		switch c.Pool {
		case poolHealth:
			if c.Calories > 300 {
				t.Errorf("health pool candidate %s has %d kcal, threshold 300", c.ID, c.Calories)
			}
		case poolIndulgence:
			if c.Calories <= 300 {
				t.Errorf("indulgence pool candidate %s has %d kcal, want > 300", c.ID, c.Calories)
			}
		}
	}
}

func TestWheelGenericFlavorDoesNotConstrain(t *testing.T) {
	engine, repo, _, _ := newWheelFixture(t)
	ctx := context.Background()

	// 沒有任何菜譜帶「热门」標籤；若通用口味參與過濾結果將為空
	addRecipe(t, repo, recipe.Candidate{ID: "a", Name: "锅包肉", SearchSet: []string{"猪肉"}, Keywords: []string{"东北菜"}, Calories: 500})
	addRecipe(t, repo, recipe.Candidate{ID: "b", Name: "地三鲜", SearchSet: []string{"土豆"}, Keywords: []string{"东北菜"}, Calories: 300})

	out, err := engine.Candidates(ctx, "u1", "东北菜", "热门")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d, want 2", len(out))
	}

	// 具體口味仍然參與過濾
	out, err = engine.Candidates(ctx, "u1", "东北菜", "酸甜")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0 for unmatched flavor", len(out))
	}
}
