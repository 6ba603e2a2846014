package retriever

import (
	"context"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// MeiliRetriever 备选召回后端：POI token 化后存入外部 Meilisearch，
// 召回走远端索引。与 InvertedRetriever 满足同一契约，用于 gazetteer
// 大到不想驻留内存、或已有搜索服务的部署。召回失败按契约降级为空结果。
type MeiliRetriever struct {
	client    meilisearch.ServiceManager
	indexName string
	opts      Options
	logger    *zap.Logger
}

// MeiliConfig Meilisearch 连接配置
type MeiliConfig struct {
	Host      string
	APIKey    string
	IndexName string
}

// NewMeili 创建 Meilisearch 召回器并校验连通性
func NewMeili(cfg MeiliConfig, opts Options, logger *zap.Logger) (*MeiliRetriever, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, err
	}
	return &MeiliRetriever{client: client, indexName: cfg.IndexName, opts: opts, logger: logger}, nil
}

// poiDocument Meilisearch 文档结构
type poiDocument struct {
	ID       string   `json:"id"`
	Tokens   []string `json:"tokens"`
	Province string   `json:"province"`
	City     string   `json:"city"`
	District string   `json:"district"`
	Phonetic string   `json:"phonetic"`
}

// Seed 配置索引并分批写入归一化后的 POI 文档
func (r *MeiliRetriever) Seed(pois []models.POIRecord, normalized map[string]models.NormalizedAddress) error {
	idx := r.client.Index(r.indexName)

	if _, err := idx.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"tokens"},
		FilterableAttributes: []string{"province", "city", "district", "phonetic"},
	}); err != nil {
		return err
	}

	docs := make([]poiDocument, 0, len(pois))
	for _, poi := range pois {
		norm, ok := normalized[poi.ID]
		if !ok {
			continue
		}
		docs = append(docs, poiDocument{
			ID:       poi.ID,
			Tokens:   norm.UniqueTokens(),
			Province: norm.Admin.Province,
			City:     norm.Admin.City,
			District: norm.Admin.District,
			Phonetic: norm.Phonetic,
		})
	}

	const batchSize = 1000
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if _, err := idx.AddDocuments(docs[start:end], "id"); err != nil {
			return err
		}
	}
	r.logger.Info("meili index seeded", zap.Int("documents", len(docs)))
	return nil
}

// Retrieve 按行政过滤由窄到宽查询，结果本地重算覆盖率后按
// 倒排召回相同的次序排序。
func (r *MeiliRetriever) Retrieve(_ context.Context, query models.NormalizedAddress, topK int) []models.MatchCandidate {
	if topK <= 0 {
		return nil
	}
	q := strings.Join(query.UniqueTokens(), " ")

	for _, filter := range r.filters(query.Admin) {
		candidates := r.search(q, filter, query, topK, false)
		if len(candidates) == 0 && query.Phonetic != "" {
			candidates = r.search("", r.phoneticFilter(filter, query.Phonetic), query, topK, true)
			for i := range candidates {
				candidates[i].Phonetic = true
				candidates[i].Coverage = 0
			}
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

// filters 生成由窄到宽的过滤器序列，空串代表不过滤
func (r *MeiliRetriever) filters(admin models.AdminPath) []string {
	var out []string
	var parts []string
	if admin.Province != "" {
		parts = append(parts, `province = `+quoteFilter(admin.Province))
	}
	if admin.City != "" {
		withCity := append(append([]string{}, parts...), `city = `+quoteFilter(admin.City))
		if admin.District != "" {
			out = append(out, strings.Join(append(append([]string{}, withCity...), `district = `+quoteFilter(admin.District)), " AND "))
		}
		out = append(out, strings.Join(withCity, " AND "))
	} else if admin.District != "" {
		out = append(out, strings.Join(append(append([]string{}, parts...), `district = `+quoteFilter(admin.District)), " AND "))
	}
	if len(parts) > 0 {
		out = append(out, strings.Join(parts, " AND "))
	}
	if len(out) == 0 || r.opts.UnscopedSearch {
		out = append(out, "")
	}
	return dedupStrings(out)
}

func (r *MeiliRetriever) phoneticFilter(base, phonetic string) string {
	clause := `phonetic = ` + quoteFilter(phonetic)
	if base == "" {
		return clause
	}
	return base + " AND " + clause
}

func (r *MeiliRetriever) search(q, filter string, query models.NormalizedAddress, limit int, includeZero bool) []models.MatchCandidate {
	req := &meilisearch.SearchRequest{Limit: int64(limit)}
	if filter != "" {
		req.Filter = filter
	}
	resp, err := r.client.Index(r.indexName).Search(q, req)
	if err != nil {
		// 召回永不失败：远端错误降级为空结果
		r.logger.Warn("meili search failed", zap.Error(err))
		return nil
	}

	unique := query.UniqueTokens()
	querySet := query.TokenSet()

	var candidates []models.MatchCandidate
	for _, hit := range resp.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := doc["id"].(string)
		if id == "" {
			continue
		}
		admin := models.AdminPath{}
		admin.Province, _ = doc["province"].(string)
		admin.City, _ = doc["city"].(string)
		admin.District, _ = doc["district"].(string)

		coverage := 0.0
		if raw, ok := doc["tokens"].([]interface{}); ok && len(unique) > 0 {
			hits := 0
			for _, t := range raw {
				if tok, ok := t.(string); ok {
					if _, in := querySet[tok]; in {
						hits++
					}
				}
			}
			coverage = float64(hits) / float64(len(unique))
		}
		if coverage == 0 && !includeZero {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			POIID:      id,
			Coverage:   coverage,
			AdminLevel: query.Admin.MatchLevel(admin),
		})
	}
	return candidates
}

// quoteFilter Meilisearch filter 字符串字面量
func quoteFilter(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
