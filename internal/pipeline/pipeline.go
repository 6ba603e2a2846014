// Package pipeline 编排整轮批处理：索引构建一次，然后有界 worker 池
// 逐条消费地址做 normalize → retrieve → score → select。
// 单条地址的失败只降级为带原因的 NoMatch，绝不中断整批。
package pipeline

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sin9ular37/Address-MatchMaster/app/config"
	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/internal/index"
	"github.com/Sin9ular37/Address-MatchMaster/internal/normalizer"
	"github.com/Sin9ular37/Address-MatchMaster/internal/retriever"
	"github.com/Sin9ular37/Address-MatchMaster/internal/scorer"
)

// Pipeline 匹配管线。索引构建后不可变，可被任意数量 worker 共享。
type Pipeline struct {
	cfg    config.EngineConfig
	norm   *normalizer.AddressNormalizer
	scorer *scorer.FeatureScorer
	logger *zap.Logger

	ix   *index.InvertedIndex
	retr retriever.Retriever
}

// New 创建管线。索引与召回器由 BuildIndex 填充。
func New(cfg config.EngineConfig, norm *normalizer.AddressNormalizer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		norm:   norm,
		scorer: scorer.New(cfg.Weights),
		logger: logger,
	}
}

// BuildIndex 整轮运行构建索引恰好一次。索引损坏是致命错误，
// 在处理任何地址之前立即返回。
func (p *Pipeline) BuildIndex(builder *index.Builder, pois []models.POIRecord) error {
	ix, err := builder.Build(pois)
	if err != nil {
		return err
	}
	p.ix = ix
	p.retr = retriever.NewInverted(ix, retriever.Options{
		AdministrativeFallback: p.cfg.AdministrativeFallback,
		UnscopedSearch:         p.cfg.UnscopedSearch,
	})
	return nil
}

// UseRetriever 替换召回后端（如 Meilisearch），索引仍用于取 POI 与归一化结果
func (p *Pipeline) UseRetriever(r retriever.Retriever) { p.retr = r }

// Index 暴露已构建的索引（只读）
func (p *Pipeline) Index() *index.InvertedIndex { return p.ix }

// ErrIndexNotBuilt Run/MatchOne 在 BuildIndex 之前被调用
var ErrIndexNotBuilt = errors.New("pipeline: index not built")

// Fingerprint 返回地址的归一化指纹，作缓存 key 用。
// 同一地址的不同写法归一化后落到同一 key。归一化失败时退回原始文本。
func (p *Pipeline) Fingerprint(addr models.AddressRecord) string {
	query, err := p.norm.Normalize(addr.RawAddress, addr.Admin)
	if err != nil {
		return addr.RawAddress
	}
	return query.CleanText
}

// Run 并发处理整批地址。结果按输入顺序返回，与 worker 数无关。
// ctx 取消是协作式的，在地址边界检查；取消前产出的结果保留返回，
// 此时 error 为 ctx.Err()。
func (p *Pipeline) Run(ctx context.Context, addrs []models.AddressRecord) ([]models.MatchResult, error) {
	if p.ix == nil {
		return nil, ErrIndexNotBuilt
	}

	type job struct {
		pos  int
		addr models.AddressRecord
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	// 有界队列：scorer 慢时生产端被压住，不会无限堆积待处理地址
	jobs := make(chan job, p.cfg.QueueDepth)
	slots := make([]*models.MatchResult, len(addrs))

	var g errgroup.Group
	g.Go(func() error {
		defer close(jobs)
		for i, addr := range addrs {
			select {
			case jobs <- job{pos: i, addr: addr}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for jb := range jobs {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				result := p.MatchOne(ctx, jb.addr)
				slots[jb.pos] = &result
			}
			return nil
		})
	}

	err := g.Wait()

	results := make([]models.MatchResult, 0, len(addrs))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return results, err
	}
	if err != nil {
		p.logger.Warn("run aborted, returning partial results",
			zap.Int("completed", len(results)), zap.Int("total", len(addrs)))
	}
	return results, err
}

// MatchOne 单条地址的状态机：
// Pending → Normalized → Retrieved → Scored → {Matched | NoMatch}。
// 每个失败转移短路为带原因的 NoMatch。
func (p *Pipeline) MatchOne(ctx context.Context, addr models.AddressRecord) models.MatchResult {
	query, err := p.norm.Normalize(addr.RawAddress, addr.Admin)
	if err != nil {
		p.logger.Debug("normalization failed",
			zap.String("address_id", addr.ID), zap.Error(err))
		return models.MatchResult{AddressID: addr.ID, Reason: models.ReasonNormalizationFailed}
	}

	candidates := p.retr.Retrieve(ctx, query, p.cfg.TopK)
	if len(candidates) == 0 {
		return models.MatchResult{AddressID: addr.ID, Reason: models.ReasonNoCandidates}
	}

	best, bestScore, bestBreakdown := p.selectBest(query, candidates)
	if best == nil {
		return models.MatchResult{AddressID: addr.ID, Reason: models.ReasonNoCandidates}
	}
	if bestScore < p.cfg.ScoreThreshold {
		return models.MatchResult{
			AddressID: addr.ID,
			Score:     bestScore,
			Reason:    models.ReasonBelowThreshold,
		}
	}

	poi, _ := p.ix.POI(best.POIID)
	return models.MatchResult{
		AddressID:  addr.ID,
		POIID:      best.POIID,
		POIName:    poi.Name,
		Score:      bestScore,
		Breakdown:  bestBreakdown,
		Reason:     models.ReasonMatched,
		AdminLevel: best.AdminLevel,
		Location:   poi.Location,
	}
}

// selectBest 逐候选评分取最优；同分按 POI id 升序裁决，保证跨运行可复现
func (p *Pipeline) selectBest(query models.NormalizedAddress, candidates []models.MatchCandidate) (*models.MatchCandidate, float64, models.Breakdown) {
	type scored struct {
		cand      models.MatchCandidate
		score     float64
		breakdown models.Breakdown
	}
	all := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		poiNorm, ok := p.ix.Normalized(cand.POIID)
		if !ok {
			continue
		}
		score, breakdown := p.scorer.Score(query, cand, poiNorm)
		if cand.Phonetic {
			breakdown["phonetic"] = 1
		}
		all = append(all, scored{cand: cand, score: score, breakdown: breakdown})
	}
	if len(all) == 0 {
		return nil, 0, nil
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].cand.POIID < all[j].cand.POIID
	})
	top := all[0]
	return &top.cand, top.score, top.breakdown
}
