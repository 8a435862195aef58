package ingredient

import (
	"strings"
)

// defaultSynonyms 食材同義詞庫：標準名 -> 別名列表
// 靜態配置資料，啟動時建表後不再修改
var defaultSynonyms = map[string][]string{
	"西红柿": {"番茄", "洋柿子"},
	"土豆":  {"马铃薯", "洋芋", "地蛋"},
	"鸡蛋":  {"鸡子", "蛋", "鲜鸡蛋"},
	"青菜":  {"小白菜", "油菜", "小油菜"},
	"猪肉":  {"瘦肉", "五花肉", "里脊肉", "前腿肉", "后腿肉"},
	"牛肉":  {"肥牛", "牛柳", "牛腱子"},
	"鸡胸肉": {"鸡胸", "鸡肉", "鸡脯肉"},
	"豆腐":  {"老豆腐", "嫩豆腐", "水豆腐"},
	"洋葱":  {"圆葱"},
	"胡萝卜": {"红萝卜"},
	"米饭":  {"大米", "白饭"},
	"面条":  {"挂面", "拉面", "手擀面"},
}

// Table 食材歸一化表
// 以標準名與別名建立反向映射，建立後唯讀，可安全併發使用
type Table struct {
	canonical map[string]string
}

// NewTable 由同義詞配置建立歸一化表
// 每個標準名映射到自身，每個別名映射到其標準名
func NewTable(synonyms map[string][]string) *Table {
	canonical := make(map[string]string, len(synonyms)*4)
	for std, aliases := range synonyms {
		canonical[std] = std
		for _, alias := range aliases {
			canonical[alias] = std
		}
	}
	return &Table{canonical: canonical}
}

// DefaultTable 使用內建同義詞庫建表
func DefaultTable() *Table {
	return NewTable(defaultSynonyms)
}

// Normalize 食材歸一化
// 輸入 "番茄" -> 返回 "西红柿"；未知食材返回去除空白後的原名，永不失敗
func (t *Table) Normalize(name string) string {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return ""
	}
	if std, ok := t.canonical[clean]; ok {
		return std
	}
	return clean
}

// NormalizeSet 將原始食材列表歸一化為標準名集合，空白項被忽略
func (t *Table) NormalizeSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		std := t.Normalize(name)
		if std == "" {
			continue
		}
		set[std] = struct{}{}
	}
	return set
}
