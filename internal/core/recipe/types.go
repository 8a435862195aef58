package recipe

// Candidate 菜譜候選，菜譜庫返回的唯讀投影
// 欄位在入庫邊界驗證，引擎端不需要逐欄位防禦
type Candidate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`       // 原始食材名列表
	SearchSet   []string `json:"ingredients_search"` // 歸一化後的食材搜尋集合
	Keywords    []string `json:"keywords"`
	Calories    int      `json:"calories"`
	CookingTime int      `json:"cooking_time"` // 分鐘
	Difficulty  string   `json:"difficulty"`
	ImageURL    string   `json:"image"`
}

// Query 菜譜查詢條件，零值欄位表示不限
type Query struct {
	IngredientsAny  []string // 搜尋集合與此集合有交集
	IngredientsNone []string // 搜尋集合與此集合無交集（過敏源排除）
	ExcludeIDs      []string // 黑名單
	Tags            []string // keywords 任一匹配
	TagsAll         []string // keywords 全部匹配
	Keyword         string   // 名稱子串
	Difficulty      string
	CalorieMin      int // calories >= CalorieMin
	CalorieMax      int // calories <= CalorieMax
	CalorieAbove    int // calories > CalorieAbove（嚴格大於）
}

// TagCount 標籤共現統計
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
