package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/internal/textanalysis"
)

func newTestNormalizer(t *testing.T) *AddressNormalizer {
	t.Helper()
	rules, err := LoadRules()
	require.NoError(t, err)
	return New(textanalysis.NewRuleAnalyzer(), rules)
}

func TestNormalize_AdminExtraction(t *testing.T) {
	n := newTestNormalizer(t)

	testCases := []struct {
		name     string
		input    string
		expected models.AdminPath
	}{
		{
			name:     "省市区齐全",
			input:    "黑龙江省哈尔滨市南岗区宣化街477号",
			expected: models.AdminPath{Province: "黑龙江省", City: "哈尔滨市", District: "南岗区"},
		},
		{
			name:     "直辖市省市同名",
			input:    "北京市朝阳区建国路88号",
			expected: models.AdminPath{Province: "北京市", City: "北京市", District: "朝阳区"},
		},
		{
			name:     "自治区",
			input:    "内蒙古自治区呼和浩特市回民区中山西路1号",
			expected: models.AdminPath{Province: "内蒙古自治区", City: "呼和浩特市", District: "回民区"},
		},
		{
			name:     "缺省级",
			input:    "哈尔滨市南岗区宣化街477号",
			expected: models.AdminPath{City: "哈尔滨市", District: "南岗区"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := n.Normalize(tc.input, models.AdminPath{})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result.Admin)
		})
	}
}

func TestNormalize_HintsOverrideText(t *testing.T) {
	n := newTestNormalizer(t)

	// 结构化列的置信度高于正文抽取，冲突时以提示为准
	result, err := n.Normalize("黑龙江省哈尔滨市南岗区宣化街477号", models.AdminPath{District: "道里区"})
	require.NoError(t, err)
	assert.Equal(t, "道里区", result.Admin.District)
	assert.Equal(t, "哈尔滨市", result.Admin.City)
}

func TestNormalize_NoiseStripping(t *testing.T) {
	n := newTestNormalizer(t)

	result, err := n.Normalize("黑龙江省哈尔滨市南岗区宣化街477号（门口有快递柜）13845678901", models.AdminPath{})
	require.NoError(t, err)

	// 噪声剔除后的干净文本
	assert.Equal(t, "黑龙江省哈尔滨市南岗区宣化街477号", result.CleanText)
	// 被剥离的内容收进 note，不静默丢弃
	assert.Contains(t, result.Note, "门口有快递柜")
	assert.Contains(t, result.Note, "13845678901")
}

func TestNormalize_FieldExtraction(t *testing.T) {
	n := newTestNormalizer(t)

	result, err := n.Normalize("北京市朝阳区建国路88号院5号楼2单元301室", models.AdminPath{})
	require.NoError(t, err)

	assert.Equal(t, "88号院", result.HouseNumber)
	assert.Equal(t, "建国路", result.RoadName)
	// 楼栋/单元/户室剔除进 note
	assert.Contains(t, result.Note, "5号楼")
	assert.Contains(t, result.Note, "2单元")
	assert.Contains(t, result.Note, "301室")
	// 门牌号不进 token 流
	assert.NotContains(t, result.Tokens, "88")
}

func TestNormalize_FullwidthFolding(t *testing.T) {
	n := newTestNormalizer(t)

	wide, err := n.Normalize("北京市朝阳区建国路８８号", models.AdminPath{})
	require.NoError(t, err)
	narrow, err := n.Normalize("北京市朝阳区建国路88号", models.AdminPath{})
	require.NoError(t, err)

	assert.Equal(t, narrow.CleanText, wide.CleanText)
	assert.Equal(t, narrow.HouseNumber, wide.HouseNumber)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer(t)

	first, err := n.Normalize("黑龙江省哈尔滨市南岗区宣化街477号（小区北门）", models.AdminPath{})
	require.NoError(t, err)

	// 幂等以 CleanText 为准：对 CleanText 反复归一化是不动点，
	// 多轮下来 CleanText、token 与行政区划都不再变化
	prev := first
	for i := 0; i < 3; i++ {
		next, err := n.Normalize(prev.CleanText, models.AdminPath{})
		require.NoError(t, err)
		assert.Equal(t, prev.CleanText, next.CleanText)
		assert.Equal(t, prev.Tokens, next.Tokens)
		assert.Equal(t, prev.Admin, next.Admin)
		assert.Equal(t, prev.HouseNumber, next.HouseNumber)
		prev = next
	}
}

func TestNormalize_ErrorOnEmpty(t *testing.T) {
	n := newTestNormalizer(t)

	testCases := []struct {
		name  string
		input string
	}{
		{name: "空串", input: ""},
		{name: "纯空白", input: "   "},
		{name: "纯标点", input: "！！！？？"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.input, models.AdminPath{})
			require.Error(t, err)
			var normErr *NormalizationError
			assert.True(t, errors.As(err, &normErr))
		})
	}
}

func TestNormalize_PhoneticSignature(t *testing.T) {
	n := newTestNormalizer(t)

	result, err := n.Normalize("北京市朝阳区建国路88号", models.AdminPath{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Phonetic)

	// 同一地址的不同写法共享签名
	other, err := n.Normalize("北京市朝阳区建国路８８号（东门）", models.AdminPath{})
	require.NoError(t, err)
	assert.Equal(t, result.Phonetic, other.Phonetic)
}
