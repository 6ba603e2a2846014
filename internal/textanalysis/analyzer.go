// Package textanalysis 封装分词与转写后端，使匹配引擎不硬依赖某个
// 具体分词库的行为。召回与评分只通过 Analyzer 接口访问文本分析能力。
package textanalysis

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// Analyzer 文本分析服务
type Analyzer interface {
	// Segment 将文本切分为最小比较单元，中英混排都要能切
	Segment(text string) []string
	// Phonetic 生成粗粒度转写签名，仅用于兜底 join
	Phonetic(text string) string
}

// PhoneticKey 将文本转写为小写 ASCII 签名（汉字 → 拼音近似），
// 丢弃所有非字母数字字符。各 Analyzer 实现共用。
func PhoneticKey(text string) string {
	ascii := unidecode.Unidecode(text)
	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range strings.ToLower(ascii) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RuleAnalyzer 纯规则后备分析器：ASCII 字母数字连续段为一个 token，
// CJK 按相邻双字组合（bigram）切分。不依赖词典，结果确定。
// bigram 窗口相互重叠，token 是召回与覆盖率的比较单元，
// 不是原文的切分，按顺序拼接不能还原原文。
type RuleAnalyzer struct{}

// NewRuleAnalyzer 创建规则分析器
func NewRuleAnalyzer() *RuleAnalyzer { return &RuleAnalyzer{} }

func (a *RuleAnalyzer) Segment(text string) []string {
	var tokens []string
	var ascii []rune
	var cjk []rune

	flushASCII := func() {
		if len(ascii) > 0 {
			tokens = append(tokens, string(ascii))
			ascii = ascii[:0]
		}
	}
	flushCJK := func() {
		switch {
		case len(cjk) == 1:
			tokens = append(tokens, string(cjk))
		case len(cjk) > 1:
			for i := 0; i+1 < len(cjk); i++ {
				tokens = append(tokens, string(cjk[i:i+2]))
			}
		}
		cjk = cjk[:0]
	}

	for _, r := range text {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			flushCJK()
			ascii = append(ascii, unicode.ToLower(r))
		case unicode.Is(unicode.Han, r):
			flushASCII()
			cjk = append(cjk, r)
		default:
			flushASCII()
			flushCJK()
		}
	}
	flushASCII()
	flushCJK()
	return tokens
}

func (a *RuleAnalyzer) Phonetic(text string) string { return PhoneticKey(text) }
