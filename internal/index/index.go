// Package index 为 POI gazetteer 构建不可变倒排索引。
// 索引一次构建、全程只读，可被任意数量的匹配 worker 无锁共享；
// 重建索引意味着构建一个全新实例。
package index

import (
	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// IDSet POI id 集合。合并是交换且结合的（集合并），
// 因此分片构建结果与 worker 数和调度顺序无关。
type IDSet map[string]struct{}

func (s IDSet) add(id string) { s[id] = struct{}{} }

func (s IDSet) union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Contains 判断 id 是否在集合中
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// 行政区划索引 key 前缀，按级别区分
const (
	keyProvince = "p:"
	keyCity     = "c:"
	keyDistrict = "d:"
)

// InvertedIndex token → POI id 与行政区划 → POI id 的只读映射。
// 通过 Builder.Build 构建，之后没有任何 API 可以修改它。
type InvertedIndex struct {
	tokens    map[string]IDSet
	divisions map[string]IDSet
	phonetics map[string]IDSet

	pois       map[string]models.POIRecord
	normalized map[string]models.NormalizedAddress
	allIDs     IDSet
}

// Size 索引的 POI 数量
func (ix *InvertedIndex) Size() int { return len(ix.pois) }

// POI 按 id 取 POI 记录
func (ix *InvertedIndex) POI(id string) (models.POIRecord, bool) {
	poi, ok := ix.pois[id]
	return poi, ok
}

// Normalized 取 POI 构建期归一化结果（构建时归一化一次，整轮复用）
func (ix *InvertedIndex) Normalized(id string) (models.NormalizedAddress, bool) {
	norm, ok := ix.normalized[id]
	return norm, ok
}

// NormalizedAll 全量归一化结果，外部召回后端建库用。调用方只读。
func (ix *InvertedIndex) NormalizedAll() map[string]models.NormalizedAddress {
	return ix.normalized
}

// TokenIDs 返回包含该 token 的 POI id 集合。返回的集合是索引内部
// 数据，调用方只读。
func (ix *InvertedIndex) TokenIDs(token string) IDSet { return ix.tokens[token] }

// DivisionIDs 返回落在某行政区划内的 POI id 集合
func (ix *InvertedIndex) DivisionIDs(level models.AdminLevel, name string) IDSet {
	if name == "" {
		return nil
	}
	return ix.divisions[divisionKey(level, name)]
}

// PhoneticIDs 返回共享同一转写签名的 POI id 集合
func (ix *InvertedIndex) PhoneticIDs(key string) IDSet {
	if key == "" {
		return nil
	}
	return ix.phonetics[key]
}

// AllIDs 全量 POI id 集合（unscoped 搜索用）
func (ix *InvertedIndex) AllIDs() IDSet { return ix.allIDs }

func divisionKey(level models.AdminLevel, name string) string {
	switch level {
	case models.AdminProvince:
		return keyProvince + name
	case models.AdminCity:
		return keyCity + name
	default:
		return keyDistrict + name
	}
}
