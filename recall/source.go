package recall

import (
	"context"

	"github.com/rushteam/hybridrec/core"
)

// Source 表示一个可复用的召回源（内容 / 协同 / 评分榜单）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Catalog 提供召回源回填商品详情所需的目录视图，index.ContentIndex 实现了它。
type Catalog interface {
	Items() []core.Item
}

// ItemsCatalog 把普通切片包装为 Catalog。
type ItemsCatalog []core.Item

func (c ItemsCatalog) Items() []core.Item { return c }

const defaultTopN = 10

func topNOf(rctx *core.RecommendContext, fallback int) int {
	if rctx != nil && rctx.TopN > 0 {
		return rctx.TopN
	}
	if fallback > 0 {
		return fallback
	}
	return defaultTopN
}
