package models

// MatchReason 单条地址的终态原因
type MatchReason string

const (
	ReasonMatched             MatchReason = "matched"
	ReasonBelowThreshold      MatchReason = "below-threshold"
	ReasonNoCandidates        MatchReason = "no-candidates"
	ReasonNormalizationFailed MatchReason = "normalization-failed"
)

// 评分特征名。权重配置以这些名字为 key。
const (
	FeatureStringSim   = "string_sim"
	FeatureCoverage    = "coverage"
	FeatureHouseNumber = "house_number"
	FeatureAdmin       = "admin"
	FeatureRoad        = "road"
)

// MatchCandidate 倒排召回的候选 POI
type MatchCandidate struct {
	POIID string `json:"poi_id"`
	// Coverage 查询 token 被该 POI 覆盖的比例 [0,1]
	Coverage float64 `json:"coverage"`
	// AdminLevel 查询与 POI 行政区划的匹配级别
	AdminLevel AdminLevel `json:"admin_level"`
	// Phonetic 标记该候选来自转写签名兜底召回（低置信）
	Phonetic bool `json:"phonetic,omitempty"`
}

// Breakdown 各子特征对综合得分的贡献（特征名 → 特征原始值）
type Breakdown map[string]float64

// MatchResult 一条地址的匹配结果。POIID 为空表示未匹配，
// Reason 说明终态来源。Score 为最优候选的综合得分。
type MatchResult struct {
	AddressID  string      `json:"address_id"`
	POIID      string      `json:"poi_id,omitempty"`
	POIName    string      `json:"poi_name,omitempty"`
	Score      float64     `json:"score"`
	Breakdown  Breakdown   `json:"breakdown,omitempty"`
	Reason     MatchReason `json:"reason"`
	AdminLevel AdminLevel  `json:"admin_level"`
	Location   *LatLng     `json:"location,omitempty"`
}

// Matched 报告该结果是否命中
func (r MatchResult) Matched() bool {
	return r.Reason == ReasonMatched && r.POIID != ""
}
