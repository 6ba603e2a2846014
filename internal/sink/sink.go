// Package sink 消费匹配结果的下游出口。引擎只产出有序 MatchResult，
// 落盘/落库格式由各实现负责。
package sink

import (
	"context"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// ResultSink 结果下沉契约
type ResultSink interface {
	// Write 按输入顺序消费整批结果
	Write(ctx context.Context, results []models.MatchResult) error
	Close(ctx context.Context) error
}
