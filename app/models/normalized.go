package models

// NormalizedAddress 归一化后的地址表示。Tokens 保留切分顺序，
// 匹配时使用去重后的集合视图（TokenSet）。
type NormalizedAddress struct {
	// CleanText 去噪、折叠全角后的完整文本，用于编辑距离比较
	CleanText string `json:"clean_text"`
	// Tokens 有序分词结果（不含门牌号与楼栋单元等已抽取字段）
	Tokens []string `json:"tokens"`
	// Admin 归一化后的行政区划（结构化提示优先于正文抽取）
	Admin AdminPath `json:"admin"`
	// HouseNumber 门牌号，如 "477号"，可为空
	HouseNumber string `json:"house_number,omitempty"`
	// RoadName 道路名称，可为空
	RoadName string `json:"road_name,omitempty"`
	// Phonetic 粗粒度转写签名，仅作为兜底 join key，不参与主评分
	Phonetic string `json:"phonetic,omitempty"`
	// Note 被剥离的非匹配内容：括号备注、电话、配送说明等
	Note string `json:"note,omitempty"`
}

// TokenSet 返回去重后的 token 集合视图
func (n NormalizedAddress) TokenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(n.Tokens))
	for _, tok := range n.Tokens {
		set[tok] = struct{}{}
	}
	return set
}

// UniqueTokens 按首次出现顺序返回去重后的 token 序列
func (n NormalizedAddress) UniqueTokens() []string {
	seen := make(map[string]struct{}, len(n.Tokens))
	out := make([]string, 0, len(n.Tokens))
	for _, tok := range n.Tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
