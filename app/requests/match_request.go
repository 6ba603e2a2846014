// Package requests API 请求结构定义
package requests

// MatchRequest 单条地址匹配请求
type MatchRequest struct {
	Address string       `json:"address" binding:"required"`
	Hints   AdminHints   `json:"hints"`
	Options MatchOptions `json:"options"`
}

// AdminHints 外部传入的行政区划提示，优先于文本内推断的区划
type AdminHints struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
}

// MatchOptions 单次请求级别的匹配选项
type MatchOptions struct {
	UseCache bool `json:"use_cache"`
}

// BatchMatchRequest 批量地址匹配请求
type BatchMatchRequest struct {
	Addresses []BatchAddress `json:"addresses" binding:"required"`
}

// BatchAddress 批量请求中的一条地址
type BatchAddress struct {
	ID      string     `json:"id"`
	Address string     `json:"address" binding:"required"`
	Hints   AdminHints `json:"hints"`
}
