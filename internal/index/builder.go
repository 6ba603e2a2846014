package index

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/internal/normalizer"
	"github.com/Sin9ular37/Address-MatchMaster/internal/textanalysis"
)

// normCacheSize 构建期归一化 memo 容量。连锁门店的地址高度重复，
// memo 避免同一串文本反复过分词器。
const normCacheSize = 4096

// IndexBuildError POI id 冲突或必填字段缺失。索引损坏会使后续所有
// 匹配失效，因此这是整轮运行的致命错误，在处理任何地址之前抛出。
type IndexBuildError struct {
	POIIDs []string
	Cause  string
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build: %s (poi: %s)", e.Cause, strings.Join(e.POIIDs, ", "))
}

// Builder 从 POIRecord 序列构建 InvertedIndex
type Builder struct {
	norm     *normalizer.AddressNormalizer
	analyzer textanalysis.Analyzer
	logger   *zap.Logger
	workers  int
}

// NewBuilder 创建构建器。workers <= 0 时取 GOMAXPROCS。
func NewBuilder(norm *normalizer.AddressNormalizer, analyzer textanalysis.Analyzer, workers int, logger *zap.Logger) *Builder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{norm: norm, analyzer: analyzer, logger: logger, workers: workers}
}

// partial 单个分片的构建产物，最后做确定性合并
type partial struct {
	tokens     map[string]IDSet
	divisions  map[string]IDSet
	phonetics  map[string]IDSet
	normalized map[string]models.NormalizedAddress
	bad        []string // 归一化失败且无名称兜底的 POI
}

// Build 归一化每个 POI 一次并建立 token 与行政区划倒排。
// 构建对 POI 分片并行，分片产物按集合并合并，结果与调度顺序无关。
func (b *Builder) Build(pois []models.POIRecord) (*InvertedIndex, error) {
	if err := b.validate(pois); err != nil {
		return nil, err
	}

	cache, _ := lru.New[string, models.NormalizedAddress](normCacheSize)

	shards := shard(pois, b.workers)
	partials := make([]*partial, len(shards))

	var g errgroup.Group
	for i, sh := range shards {
		i, sh := i, sh
		g.Go(func() error {
			partials[i] = b.buildShard(sh, cache)
			return nil
		})
	}
	_ = g.Wait()

	ix := &InvertedIndex{
		tokens:     make(map[string]IDSet),
		divisions:  make(map[string]IDSet),
		phonetics:  make(map[string]IDSet),
		pois:       make(map[string]models.POIRecord, len(pois)),
		normalized: make(map[string]models.NormalizedAddress, len(pois)),
		allIDs:     make(IDSet, len(pois)),
	}
	for _, poi := range pois {
		ix.pois[poi.ID] = poi
		ix.allIDs.add(poi.ID)
	}

	var bad []string
	for _, p := range partials {
		bad = append(bad, p.bad...)
		mergeSets(ix.tokens, p.tokens)
		mergeSets(ix.divisions, p.divisions)
		mergeSets(ix.phonetics, p.phonetics)
		for id, norm := range p.normalized {
			ix.normalized[id] = norm
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, &IndexBuildError{POIIDs: bad, Cause: "poi yields no tokens"}
	}

	b.logger.Info("index built",
		zap.Int("pois", len(pois)),
		zap.Int("tokens", len(ix.tokens)),
		zap.Int("divisions", len(ix.divisions)))
	return ix, nil
}

// validate 前置校验：id 必填且唯一，地址与名称不能同时为空
func (b *Builder) validate(pois []models.POIRecord) error {
	seen := make(map[string]struct{}, len(pois))
	var dups, missing []string
	for i, poi := range pois {
		if poi.ID == "" {
			missing = append(missing, fmt.Sprintf("#%d", i))
			continue
		}
		if _, ok := seen[poi.ID]; ok {
			dups = append(dups, poi.ID)
		}
		seen[poi.ID] = struct{}{}
		if poi.RawAddress == "" && poi.Name == "" {
			missing = append(missing, poi.ID)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return &IndexBuildError{POIIDs: dups, Cause: "duplicate poi id"}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &IndexBuildError{POIIDs: missing, Cause: "missing identity field"}
	}
	return nil
}

func (b *Builder) buildShard(pois []models.POIRecord, cache *lru.Cache[string, models.NormalizedAddress]) *partial {
	p := &partial{
		tokens:     make(map[string]IDSet),
		divisions:  make(map[string]IDSet),
		phonetics:  make(map[string]IDSet),
		normalized: make(map[string]models.NormalizedAddress),
	}
	for _, poi := range pois {
		norm, ok := b.normalizePOI(poi, cache)
		if !ok {
			p.bad = append(p.bad, poi.ID)
			continue
		}
		p.normalized[poi.ID] = norm

		for _, tok := range norm.Tokens {
			if tok == "" {
				continue
			}
			addTo(p.tokens, tok, poi.ID)
		}
		if norm.Admin.Province != "" {
			addTo(p.divisions, divisionKey(models.AdminProvince, norm.Admin.Province), poi.ID)
		}
		if norm.Admin.City != "" {
			addTo(p.divisions, divisionKey(models.AdminCity, norm.Admin.City), poi.ID)
		}
		if norm.Admin.District != "" {
			addTo(p.divisions, divisionKey(models.AdminDistrict, norm.Admin.District), poi.ID)
		}
		if norm.Phonetic != "" {
			addTo(p.phonetics, norm.Phonetic, poi.ID)
		}
	}
	return p
}

// normalizePOI 归一化地址并追加名称 token。地址解析失败但名称可分词时，
// 仍可按名称召回。
func (b *Builder) normalizePOI(poi models.POIRecord, cache *lru.Cache[string, models.NormalizedAddress]) (models.NormalizedAddress, bool) {
	cacheKey := poi.RawAddress + "\x1f" + poi.Admin.Province + "|" + poi.Admin.City + "|" + poi.Admin.District + "\x1f" + poi.Name

	if norm, ok := cache.Get(cacheKey); ok {
		return norm, true
	}

	norm, err := b.norm.Normalize(poi.RawAddress, poi.Admin)
	if err != nil {
		norm = models.NormalizedAddress{Admin: poi.Admin}
	}
	for _, tok := range b.analyzer.Segment(poi.Name) {
		norm.Tokens = append(norm.Tokens, tok)
	}
	if len(norm.Tokens) == 0 {
		return models.NormalizedAddress{}, false
	}
	if norm.Phonetic == "" {
		norm.Phonetic = b.analyzer.Phonetic(poi.Name)
	}

	cache.Add(cacheKey, norm)
	return norm, true
}

func addTo(m map[string]IDSet, key, id string) {
	set, ok := m[key]
	if !ok {
		set = make(IDSet)
		m[key] = set
	}
	set.add(id)
}

func mergeSets(dst, src map[string]IDSet) {
	for key, set := range src {
		if existing, ok := dst[key]; ok {
			existing.union(set)
		} else {
			dst[key] = set
		}
	}
}

// shard 将 POI 均分为 n 片
func shard(pois []models.POIRecord, n int) [][]models.POIRecord {
	if n < 1 {
		n = 1
	}
	if n > len(pois) {
		n = len(pois)
	}
	if n == 0 {
		return nil
	}
	size := (len(pois) + n - 1) / n
	var shards [][]models.POIRecord
	for start := 0; start < len(pois); start += size {
		end := start + size
		if end > len(pois) {
			end = len(pois)
		}
		shards = append(shards, pois[start:end])
	}
	return shards
}
