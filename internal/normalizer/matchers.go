package normalizer

import (
	"regexp"
	"strings"
)

// FieldMatcher 单个结构化字段的抽取规则。链上按序执行，
// 每个字段首条命中的规则即提交，命中子串从文本中剔除，
// 避免后续规则二次抽取。
type FieldMatcher interface {
	// Name 字段名，用于单测与 note 标注
	Name() string
	// Extract 返回抽取值与剔除命中子串后的文本；
	// 未命中时 value 为空、text 原样返回
	Extract(text string) (value string, remainder string)
}

// regexMatcher 基于正则的字段抽取。keepInText 为 true 时只捕获值、
// 不从文本中剔除（道路名要留在分词流里参与 token 召回）。
type regexMatcher struct {
	name       string
	re         *regexp.Regexp
	keepInText bool
}

func (m *regexMatcher) Name() string { return m.name }

func (m *regexMatcher) Extract(text string) (string, string) {
	loc := m.re.FindStringIndex(text)
	if loc == nil {
		return "", text
	}
	value := text[loc[0]:loc[1]]
	if m.keepInText {
		return value, text
	}
	return value, text[:loc[0]] + text[loc[1]:]
}

// buildMatcherChain 组装字段抽取链。楼栋/单元/户室排在门牌号前面，
// 否则 "5号楼" 会被门牌规则先吃掉 "5号"。道路名最后，且保留在文本中。
func buildMatcherChain(rules *Rules) []FieldMatcher {
	return []FieldMatcher{
		&regexMatcher{name: fieldBuilding, re: rules.Building},
		&regexMatcher{name: fieldUnit, re: rules.Unit},
		&regexMatcher{name: fieldRoom, re: rules.Room},
		&regexMatcher{name: fieldHouse, re: rules.House},
		&regexMatcher{name: fieldRoad, re: rules.Road, keepInText: true},
	}
}

const (
	fieldBuilding = "building"
	fieldUnit     = "unit"
	fieldRoom     = "room"
	fieldHouse    = "house"
	fieldRoad     = "road"
)

// extractFields 跑完整条链，返回字段表与残余文本
func extractFields(chain []FieldMatcher, text string) (map[string]string, string) {
	fields := make(map[string]string, len(chain))
	for _, m := range chain {
		value, rest := m.Extract(text)
		if value == "" {
			continue
		}
		fields[m.Name()] = strings.TrimSpace(value)
		text = rest
	}
	return fields, text
}
