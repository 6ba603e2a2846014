package textanalysis

import (
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// GseAnalyzer 基于 gse 词典分词的分析器，作为默认后端。
// 词典加载一次，Segment 并发只读安全。
type GseAnalyzer struct {
	seg gse.Segmenter
}

// NewGseAnalyzer 加载内置中文词典并返回分析器
func NewGseAnalyzer() (*GseAnalyzer, error) {
	a := &GseAnalyzer{}
	if err := a.seg.LoadDict(); err != nil {
		return nil, err
	}
	return a, nil
}

// Segment 用 HMM 辅助切分文本。gse 对中英混排会在脚本边界断开，
// 这里再做一次小写折叠与空白过滤。
func (a *GseAnalyzer) Segment(text string) []string {
	raw := a.seg.Cut(text, true)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || isPunctOnly(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (a *GseAnalyzer) Phonetic(text string) string { return PhoneticKey(text) }

func isPunctOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
