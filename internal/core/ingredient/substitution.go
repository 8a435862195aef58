package ingredient

// Substitute 替代食材建議
type Substitute struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// defaultSubstitutes 替代規則表：標準名 -> 替代建議
var defaultSubstitutes = map[string][]Substitute{
	"葱":   {{Name: "洋葱", Reason: "风味相近"}},
	"生抽":  {{Name: "盐", Reason: "提供咸味"}, {Name: "老抽", Reason: "上色用"}},
	"冰糖":  {{Name: "白糖", Reason: "甜味来源"}},
	"鸡胸肉": {{Name: "鸡腿肉", Reason: "口感更嫩"}},
	"西红柿": {{Name: "番茄酱", Reason: "提供酸甜味"}},
	"料酒":  {{Name: "白酒", Reason: "去腥"}, {Name: "姜片", Reason: "去腥"}},
}

// SubstitutionTable 替代食材查詢表，建立後唯讀
type SubstitutionTable struct {
	rules map[string][]Substitute
	norm  *Table
}

// NewSubstitutionTable 建立替代查詢表
func NewSubstitutionTable(rules map[string][]Substitute, norm *Table) *SubstitutionTable {
	return &SubstitutionTable{rules: rules, norm: norm}
}

// DefaultSubstitutionTable 使用內建替代規則建表
func DefaultSubstitutionTable(norm *Table) *SubstitutionTable {
	return NewSubstitutionTable(defaultSubstitutes, norm)
}

// SubstitutesFor 查詢食材的替代建議
// 先歸一化再查表，查不到返回空列表，永不失敗
func (s *SubstitutionTable) SubstitutesFor(name string) []Substitute {
	std := s.norm.Normalize(name)
	if subs, ok := s.rules[std]; ok {
		out := make([]Substitute, len(subs))
		copy(out, subs)
		return out
	}
	return []Substitute{}
}
