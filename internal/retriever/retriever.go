// Package retriever 从倒排索引召回候选 POI。召回永不失败，
// 空结果本身就是"无候选"的合法信号。Retriever 是可替换接口，
// 向量召回等替代实现可以挂在同一契约后面。
package retriever

import (
	"context"
	"sort"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/internal/index"
)

// Retriever 候选召回契约
type Retriever interface {
	// Retrieve 返回按覆盖率降序、截断到 topK 的候选序列。
	// 空切片表示无候选。
	Retrieve(ctx context.Context, query models.NormalizedAddress, topK int) []models.MatchCandidate
}

// Options 召回行为开关
type Options struct {
	// AdministrativeFallback 窄范围无候选时是否逐级放宽：
	// 区县 → 市 → 省
	AdministrativeFallback bool
	// UnscopedSearch 省级仍无候选时是否退化为全量搜索
	// （原设计未定义该行为，这里做成显式配置）
	UnscopedSearch bool
}

// InvertedRetriever 基于倒排索引的默认召回实现
type InvertedRetriever struct {
	ix   *index.InvertedIndex
	opts Options
}

// NewInverted 创建倒排召回器
func NewInverted(ix *index.InvertedIndex, opts Options) *InvertedRetriever {
	return &InvertedRetriever{ix: ix, opts: opts}
}

// Retrieve 先按行政区划收窄范围，范围内按 token 覆盖率排序过滤；
// 全程零存活时用转写签名在范围内兜底召回一个低置信候选集。
// 范围本身为空集（该区划不在索引中）与范围内零命中是两种不同的落空，
// 但放宽与否同样由 AdministrativeFallback 决定：关闭时两者都立即终止。
func (r *InvertedRetriever) Retrieve(_ context.Context, query models.NormalizedAddress, topK int) []models.MatchCandidate {
	if topK <= 0 {
		return nil
	}

	for _, scope := range r.scopes(query.Admin) {
		if scope != nil && len(scope) == 0 {
			if !r.opts.AdministrativeFallback {
				break
			}
			continue
		}
		candidates := r.coverageIn(scope, query)
		if len(candidates) == 0 {
			candidates = r.phoneticIn(scope, query)
		}
		if len(candidates) > 0 {
			sortCandidates(candidates)
			if len(candidates) > topK {
				candidates = candidates[:topK]
			}
			return candidates
		}
		if !r.opts.AdministrativeFallback {
			break
		}
	}
	return nil
}

// scopes 生成由窄到宽的候选范围序列。nil 范围代表不限制；
// 查询无行政区划时直接走不限范围。
func (r *InvertedRetriever) scopes(admin models.AdminPath) []index.IDSet {
	var scopes []index.IDSet
	if admin.District != "" {
		scopes = append(scopes, r.intersect(admin, models.AdminDistrict))
	}
	if admin.City != "" {
		scopes = append(scopes, r.intersect(admin, models.AdminCity))
	}
	if admin.Province != "" {
		scopes = append(scopes, r.intersect(admin, models.AdminProvince))
	}
	if len(scopes) == 0 || r.opts.UnscopedSearch {
		scopes = append(scopes, nil)
	}
	return scopes
}

// intersect 在 narrowest 级别上取各已知级别的交集
func (r *InvertedRetriever) intersect(admin models.AdminPath, narrowest models.AdminLevel) index.IDSet {
	sets := make([]index.IDSet, 0, 3)
	if admin.Province != "" {
		sets = append(sets, r.ix.DivisionIDs(models.AdminProvince, admin.Province))
	}
	if admin.City != "" && narrowest >= models.AdminCity {
		sets = append(sets, r.ix.DivisionIDs(models.AdminCity, admin.City))
	}
	if admin.District != "" && narrowest >= models.AdminDistrict {
		sets = append(sets, r.ix.DivisionIDs(models.AdminDistrict, admin.District))
	}

	result := make(index.IDSet)
	if len(sets) == 0 {
		return result
	}
	// 任一级别在索引中不存在即交集为空
	for _, s := range sets {
		if len(s) == 0 {
			return result
		}
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if len(s) < len(smallest) {
			smallest = s
		}
	}
	for id := range smallest {
		ok := true
		for _, s := range sets {
			if !s.Contains(id) {
				ok = false
				break
			}
		}
		if ok {
			result[id] = struct{}{}
		}
	}
	return result
}

// coverageIn 统计范围内每个 POI 覆盖的查询 token 数。
// 零覆盖的 id 直接丢弃。
func (r *InvertedRetriever) coverageIn(scope index.IDSet, query models.NormalizedAddress) []models.MatchCandidate {
	unique := query.UniqueTokens()
	if len(unique) == 0 {
		return nil
	}

	hits := make(map[string]int)
	for _, tok := range unique {
		for id := range r.ix.TokenIDs(tok) {
			if scope != nil && !scope.Contains(id) {
				continue
			}
			hits[id]++
		}
	}

	candidates := make([]models.MatchCandidate, 0, len(hits))
	for id, count := range hits {
		norm, ok := r.ix.Normalized(id)
		if !ok {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			POIID:      id,
			Coverage:   float64(count) / float64(len(unique)),
			AdminLevel: query.Admin.MatchLevel(norm.Admin),
		})
	}
	return candidates
}

// phoneticIn 转写签名兜底：范围内共享同一签名的 POI 作为低置信候选
func (r *InvertedRetriever) phoneticIn(scope index.IDSet, query models.NormalizedAddress) []models.MatchCandidate {
	var candidates []models.MatchCandidate
	for id := range r.ix.PhoneticIDs(query.Phonetic) {
		if scope != nil && !scope.Contains(id) {
			continue
		}
		norm, ok := r.ix.Normalized(id)
		if !ok {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			POIID:      id,
			Coverage:   0,
			AdminLevel: query.Admin.MatchLevel(norm.Admin),
			Phonetic:   true,
		})
	}
	return candidates
}

// sortCandidates 覆盖率降序 → 更细行政匹配 → id 升序。
// 最后一键保证跨运行可复现。
func sortCandidates(candidates []models.MatchCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Coverage != b.Coverage {
			return a.Coverage > b.Coverage
		}
		if a.AdminLevel != b.AdminLevel {
			return a.AdminLevel > b.AdminLevel
		}
		return a.POIID < b.POIID
	})
}
