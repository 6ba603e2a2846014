// Package scorer 对候选 POI 计算多特征综合相似度。
// 综合分是固定权重的线性组合；某候选缺失的特征不计入也不惩罚，
// 剩余权重重归一化，保证得分始终落在 [0,1]。
package scorer

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// 行政匹配粒度加成：区县 > 市 > 省 > 无
const (
	adminDistrictValue = 1.0
	adminCityValue     = 2.0 / 3.0
	adminProvinceValue = 1.0 / 3.0
)

// DefaultWeights 默认特征权重，总和为 1
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		models.FeatureStringSim:   0.30,
		models.FeatureCoverage:    0.35,
		models.FeatureHouseNumber: 0.15,
		models.FeatureAdmin:       0.15,
		models.FeatureRoad:        0.05,
	}
}

// FeatureScorer 特征评分器。权重来自配置而非硬编码。
type FeatureScorer struct {
	weights map[string]float64
}

// New 创建评分器。weights 为空时使用默认权重；负权重按 0 处理。
func New(weights map[string]float64) *FeatureScorer {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	clean := make(map[string]float64, len(weights))
	for name, w := range weights {
		if w > 0 {
			clean[name] = w
		}
	}
	return &FeatureScorer{weights: clean}
}

// Score 计算综合得分与特征明细。
// 特征：
//   - string_sim  1 − 编辑距离/最大长度（按 rune 计）
//   - coverage    召回阶段算好的覆盖率，直接复用不重算
//   - house_number 门牌号二元精确匹配，任一侧缺失则不参与
//   - admin       行政匹配粒度加成，查询无行政区划时不参与
//   - road        道路名 Jaro-Winkler，任一侧缺失则不参与
func (s *FeatureScorer) Score(query models.NormalizedAddress, cand models.MatchCandidate, poiNorm models.NormalizedAddress) (float64, models.Breakdown) {
	breakdown := make(models.Breakdown, len(s.weights)+1)

	breakdown[models.FeatureStringSim] = editSimilarity(query.CleanText, poiNorm.CleanText)
	breakdown[models.FeatureCoverage] = cand.Coverage

	if query.HouseNumber != "" && poiNorm.HouseNumber != "" {
		if query.HouseNumber == poiNorm.HouseNumber {
			breakdown[models.FeatureHouseNumber] = 1
		} else {
			breakdown[models.FeatureHouseNumber] = 0
		}
	}
	if !query.Admin.IsZero() {
		breakdown[models.FeatureAdmin] = adminValue(cand.AdminLevel)
	}
	if query.RoadName != "" && poiNorm.RoadName != "" {
		breakdown[models.FeatureRoad] = smetrics.JaroWinkler(query.RoadName, poiNorm.RoadName, 0.7, 4)
	}

	// 浮点加法不可结合，按特征名排序累加，保证同一输入得分逐位一致
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	var weighted, total float64
	for _, name := range names {
		w, ok := s.weights[name]
		if !ok {
			continue
		}
		weighted += w * breakdown[name]
		total += w
	}
	if total == 0 {
		return 0, breakdown
	}

	score := weighted / total
	// 数值噪声钳到 [0,1]
	score = math.Max(0, math.Min(1, score))
	return score, breakdown
}

func editSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	maxLen := runeLen(a)
	if l := runeLen(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func adminValue(level models.AdminLevel) float64 {
	switch level {
	case models.AdminDistrict:
		return adminDistrictValue
	case models.AdminCity:
		return adminCityValue
	case models.AdminProvince:
		return adminProvinceValue
	default:
		return 0
	}
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
