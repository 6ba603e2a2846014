package textanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleAnalyzer_Segment(t *testing.T) {
	a := NewRuleAnalyzer()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "纯中文按双字切分",
			input:    "中关村大街",
			expected: []string{"中关", "关村", "村大", "大街"},
		},
		{
			name:     "中英数字混排",
			input:    "望京SOHO塔3",
			expected: []string{"望京", "soho", "塔", "3"},
		},
		{
			name:     "单个汉字保留",
			input:    "街",
			expected: []string{"街"},
		},
		{
			name:     "标点切断序列",
			input:    "建国路,88",
			expected: []string{"建国", "国路", "88"},
		},
		{
			name:     "空串",
			input:    "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, a.Segment(tc.input))
		})
	}
}

func TestPhoneticKey(t *testing.T) {
	assert.Equal(t, "beijing", PhoneticKey("北京"))
	assert.Equal(t, "abc123", PhoneticKey("ABC-123"))
	assert.Equal(t, "", PhoneticKey("！？。"))

	// 同音字共享同一签名
	assert.Equal(t, PhoneticKey("真真"), PhoneticKey("针针"))
}

func TestPhoneticKey_Deterministic(t *testing.T) {
	input := "黑龙江省哈尔滨市南岗区宣化街477号"
	first := PhoneticKey(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PhoneticKey(input))
	}
	assert.NotEmpty(t, first)
}
