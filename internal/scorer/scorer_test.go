package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

func TestScore_PerfectMatch(t *testing.T) {
	s := New(nil)

	query := models.NormalizedAddress{
		CleanText:   "黑龙江省哈尔滨市南岗区宣化街477号",
		Admin:       models.AdminPath{Province: "黑龙江省", City: "哈尔滨市", District: "南岗区"},
		HouseNumber: "477号",
		RoadName:    "宣化街",
	}
	cand := models.MatchCandidate{POIID: "P1", Coverage: 1, AdminLevel: models.AdminDistrict}

	score, breakdown := s.Score(query, cand, query)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.InDelta(t, 1.0, breakdown[models.FeatureStringSim], 1e-9)
	assert.InDelta(t, 1.0, breakdown[models.FeatureCoverage], 1e-9)
	assert.InDelta(t, 1.0, breakdown[models.FeatureHouseNumber], 1e-9)
	assert.InDelta(t, 1.0, breakdown[models.FeatureAdmin], 1e-9)
	assert.InDelta(t, 1.0, breakdown[models.FeatureRoad], 1e-9)
}

func TestScore_MissingFeaturesRenormalize(t *testing.T) {
	s := New(nil)

	// 门牌/道路/行政区划全缺失：只剩 string_sim 与 coverage 参与，
	// 权重重归一化后满分仍是 1
	query := models.NormalizedAddress{CleanText: "宣化街小区"}
	cand := models.MatchCandidate{POIID: "P1", Coverage: 1}

	score, breakdown := s.Score(query, cand, query)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.NotContains(t, breakdown, models.FeatureHouseNumber)
	assert.NotContains(t, breakdown, models.FeatureAdmin)
	assert.NotContains(t, breakdown, models.FeatureRoad)
}

func TestScore_HouseNumberBinary(t *testing.T) {
	s := New(nil)

	query := models.NormalizedAddress{
		CleanText:   "宣化街477号",
		HouseNumber: "477号",
	}
	poiSame := models.NormalizedAddress{CleanText: "宣化街477号", HouseNumber: "477号"}
	poiDiff := models.NormalizedAddress{CleanText: "宣化街479号", HouseNumber: "479号"}
	cand := models.MatchCandidate{POIID: "P1", Coverage: 1}

	sameScore, sameBd := s.Score(query, cand, poiSame)
	diffScore, diffBd := s.Score(query, cand, poiDiff)

	// 门牌号是二元特征：相等得 1，不等得 0 而非部分分
	assert.InDelta(t, 1.0, sameBd[models.FeatureHouseNumber], 1e-9)
	assert.InDelta(t, 0.0, diffBd[models.FeatureHouseNumber], 1e-9)
	assert.Greater(t, sameScore, diffScore)
}

func TestScore_AdminGranularity(t *testing.T) {
	s := New(nil)

	query := models.NormalizedAddress{
		CleanText: "哈尔滨市南岗区宣化街",
		Admin:     models.AdminPath{City: "哈尔滨市", District: "南岗区"},
	}
	poi := models.NormalizedAddress{CleanText: "哈尔滨市南岗区宣化街"}

	levels := []models.AdminLevel{models.AdminNone, models.AdminProvince, models.AdminCity, models.AdminDistrict}
	var prev float64 = -1
	for _, level := range levels {
		_, bd := s.Score(query, models.MatchCandidate{Coverage: 1, AdminLevel: level}, poi)
		// 行政匹配越细加成越高
		assert.Greater(t, bd[models.FeatureAdmin], prev)
		prev = bd[models.FeatureAdmin]
	}
}

func TestScore_AdminSkippedWithoutQueryAdmin(t *testing.T) {
	s := New(nil)

	query := models.NormalizedAddress{CleanText: "宣化街477号"}
	poi := models.NormalizedAddress{CleanText: "宣化街477号"}

	_, bd := s.Score(query, models.MatchCandidate{Coverage: 1, AdminLevel: models.AdminDistrict}, poi)
	assert.NotContains(t, bd, models.FeatureAdmin)
}

func TestScore_RangeInvariant(t *testing.T) {
	s := New(nil)

	queries := []models.NormalizedAddress{
		{CleanText: "宣化街477号", HouseNumber: "477号", RoadName: "宣化街"},
		{CleanText: "建国路88号", Admin: models.AdminPath{Province: "北京市"}},
		{CleanText: "x"},
	}
	pois := []models.NormalizedAddress{
		{CleanText: "中央大街57号", HouseNumber: "57号", RoadName: "中央大街"},
		{CleanText: "完全不相干的文本串"},
	}
	for _, q := range queries {
		for _, p := range pois {
			for _, cov := range []float64{0, 0.5, 1} {
				score, _ := s.Score(q, models.MatchCandidate{Coverage: cov}, p)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}

func TestScore_ExactlyReproducible(t *testing.T) {
	s := New(nil)

	// 五个特征全部参与、取值各异，综合分必须逐位可复现：
	// 阈值边界与同分裁决都依赖精确相等
	query := models.NormalizedAddress{
		CleanText:   "黑龙江省哈尔滨市南岗区红旗大街99号",
		Admin:       models.AdminPath{Province: "黑龙江省", City: "哈尔滨市", District: "南岗区"},
		HouseNumber: "99号",
		RoadName:    "红旗大街",
	}
	poi := models.NormalizedAddress{
		CleanText:   "黑龙江省哈尔滨市南岗区宣化街477号",
		HouseNumber: "477号",
		RoadName:    "宣化街",
	}
	cand := models.MatchCandidate{POIID: "P1", Coverage: 10.0 / 14.0, AdminLevel: models.AdminDistrict}

	first, firstBd := s.Score(query, cand, poi)
	for i := 0; i < 200; i++ {
		score, bd := s.Score(query, cand, poi)
		require.Equal(t, first, score)
		require.Equal(t, firstBd, bd)
	}
}

func TestScore_CoverageMonotonic(t *testing.T) {
	s := New(nil)

	query := models.NormalizedAddress{
		CleanText:   "宣化街477号",
		HouseNumber: "477号",
		Admin:       models.AdminPath{District: "南岗区"},
	}
	poi := models.NormalizedAddress{CleanText: "宣化街477号", HouseNumber: "477号"}

	// 其他特征不变时，覆盖率上升综合分不降
	var prev float64 = -1
	for _, cov := range []float64{0, 0.25, 0.5, 0.75, 1} {
		score, _ := s.Score(query, models.MatchCandidate{Coverage: cov, AdminLevel: models.AdminDistrict}, poi)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestNew_CustomWeights(t *testing.T) {
	// 只保留 coverage 一个特征，得分即覆盖率
	s := New(map[string]float64{models.FeatureCoverage: 1})

	query := models.NormalizedAddress{CleanText: "宣化街"}
	poi := models.NormalizedAddress{CleanText: "完全不同"}

	score, _ := s.Score(query, models.MatchCandidate{Coverage: 0.4}, poi)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestNew_DropsNonPositiveWeights(t *testing.T) {
	s := New(map[string]float64{
		models.FeatureCoverage:  1,
		models.FeatureStringSim: -0.5,
	})

	query := models.NormalizedAddress{CleanText: "宣化街"}
	score, _ := s.Score(query, models.MatchCandidate{Coverage: 1}, query)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestEditSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, editSimilarity("宣化街", "宣化街"), 1e-9)
	assert.InDelta(t, 0.0, editSimilarity("", "宣化街"), 1e-9)
	// 一字之差，按 rune 长度归一
	assert.InDelta(t, 1.0-1.0/3.0, editSimilarity("宣化街", "宣花街"), 1e-9)
}
