// Package normalizer 将原始运单地址转为结构化、可比较的归一化表示：
// 去噪 → 行政区划抽取 → 字段抽取链 → 分词 → 转写签名。
// 归一化是确定且幂等的：CleanText 是归一化结果的文本重建，
// 对 CleanText 再归一化得到相同的 CleanText、token 集合与行政区划。
// 幂等以 CleanText 为准而非 token 拼接串，token（见 textanalysis）
// 是可重叠的比较单元，不构成原文的切分。
package normalizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/internal/textanalysis"
)

// minTokenRunes 短于该长度的 token 视为无语义噪声被丢弃，
// 除非它是仅剩的内容
const minTokenRunes = 2

// NormalizationError 输入去噪后为空或产出零 token。
// pipeline 就地降级为 NoMatch，不会中断整批。
type NormalizationError struct {
	Raw   string
	Cause string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %q: %s", e.Raw, e.Cause)
}

// AddressNormalizer 地址归一化器。无共享可变状态，并发安全。
type AddressNormalizer struct {
	analyzer textanalysis.Analyzer
	rules    *Rules
	chain    []FieldMatcher
}

// New 创建归一化器
func New(analyzer textanalysis.Analyzer, rules *Rules) *AddressNormalizer {
	return &AddressNormalizer{
		analyzer: analyzer,
		rules:    rules,
		chain:    buildMatcherChain(rules),
	}
}

// Normalize 归一化一条地址。hints 来自结构化省市区列，置信度高于
// 正文抽取，冲突时覆盖。输入去噪后为空或零 token 时返回 NormalizationError。
func (n *AddressNormalizer) Normalize(raw string, hints models.AdminPath) (models.NormalizedAddress, error) {
	cleaned, note := n.clean(raw)
	if cleaned == "" && hints.IsZero() {
		return models.NormalizedAddress{}, &NormalizationError{Raw: raw, Cause: "empty after noise stripping"}
	}

	// 行政区划：正文抽取打底，结构化提示覆盖
	textAdmin, detail := n.extractAdmin(cleaned)
	admin := mergeAdmin(n.normalizeHints(hints), textAdmin)

	// 字段抽取链：楼栋/单元/户室剔除进 note，门牌号剔除并保留为字段，
	// 道路名捕获但留在分词文本中
	fields, detail := extractFields(n.chain, detail)
	for _, name := range []string{fieldBuilding, fieldUnit, fieldRoom} {
		if v, ok := fields[name]; ok {
			note = appendNote(note, v)
		}
	}

	// CleanText 保留门牌号，编辑距离特征需要完整文本
	cleanText := admin.Province + admin.City + admin.District + detail + fields[fieldHouse]

	tokens := n.tokenize(admin.Province + admin.City + admin.District + detail)
	if len(tokens) == 0 {
		return models.NormalizedAddress{}, &NormalizationError{Raw: raw, Cause: "no tokens"}
	}

	return models.NormalizedAddress{
		CleanText:   cleanText,
		Tokens:      tokens,
		Admin:       admin,
		HouseNumber: fields[fieldHouse],
		RoadName:    fields[fieldRoad],
		Phonetic:    n.analyzer.Phonetic(cleanText),
		Note:        note,
	}, nil
}

// clean 折叠全角、应用替换表、按优先级剥离噪声。
// 每段被剥离的文本都收进 note，不静默丢弃。
func (n *AddressNormalizer) clean(raw string) (string, string) {
	s := width.Narrow.String(strings.TrimSpace(raw))
	for old, repl := range n.rules.Replacements {
		s = strings.ReplaceAll(s, old, repl)
	}

	var notes []string
	capture := func(m string) string {
		if trimmed := strings.Trim(m, "()[]（）【】"); trimmed != "" {
			notes = append(notes, trimmed)
		}
		return ""
	}
	// 1. 括号备注
	s = n.rules.Bracket.ReplaceAllStringFunc(s, capture)
	// 2. 电话号码
	s = n.rules.Phone.ReplaceAllStringFunc(s, capture)
	// 3. 配送说明标记起到串尾
	s = n.rules.Contact.ReplaceAllStringFunc(s, capture)

	s = strings.Join(strings.Fields(s), "")
	return s, strings.Join(notes, "；")
}

// extractAdmin 从正文头部按后缀规则逐级剥离省/市/区县
func (n *AddressNormalizer) extractAdmin(text string) (models.AdminPath, string) {
	var admin models.AdminPath
	rest := text

	for _, m := range n.rules.Municipalities {
		if strings.HasPrefix(rest, m) {
			// 直辖市：省市同名
			admin.Province = m
			admin.City = m
			rest = rest[len(m):]
			break
		}
	}
	if admin.Province == "" {
		if loc := n.rules.ProvincePattern.FindStringIndex(rest); loc != nil {
			admin.Province = rest[:loc[1]]
			rest = rest[loc[1]:]
		}
	}
	if admin.City == "" {
		if loc := n.rules.CityPattern.FindStringIndex(rest); loc != nil {
			admin.City = rest[:loc[1]]
			rest = rest[loc[1]:]
		}
	}
	if loc := n.rules.DistrictPattern.FindStringIndex(rest); loc != nil {
		admin.District = rest[:loc[1]]
		rest = rest[loc[1]:]
	}
	return admin, rest
}

// normalizeHints 结构化列同样过一遍折叠与裁剪
func (n *AddressNormalizer) normalizeHints(hints models.AdminPath) models.AdminPath {
	fold := func(s string) string {
		return strings.Join(strings.Fields(width.Narrow.String(strings.TrimSpace(s))), "")
	}
	return models.AdminPath{
		Province: fold(hints.Province),
		City:     fold(hints.City),
		District: fold(hints.District),
	}
}

// mergeAdmin 提示列优先，缺失级别用正文抽取补齐
func mergeAdmin(hints, extracted models.AdminPath) models.AdminPath {
	merged := extracted
	if hints.Province != "" {
		merged.Province = hints.Province
	}
	if hints.City != "" {
		merged.City = hints.City
	}
	if hints.District != "" {
		merged.District = hints.District
	}
	return merged
}

// tokenize 分词并过滤短 token。全部被过滤时保留最长的一个，
// 保证"仅剩内容"不至于归一化失败。
func (n *AddressNormalizer) tokenize(text string) []string {
	raw := n.analyzer.Segment(text)
	tokens := make([]string, 0, len(raw))
	longest := ""
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) > utf8.RuneCountInString(longest) {
			longest = tok
		}
		if utf8.RuneCountInString(tok) < minTokenRunes {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 && longest != "" {
		tokens = append(tokens, longest)
	}
	return tokens
}

func appendNote(note, extra string) string {
	if note == "" {
		return extra
	}
	return note + "；" + extra
}
