package rerank

import (
	"context"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：同一维度值最多保留 MaxPerValue 个（默认 1），
// 维度值为空的商品不受限制。
//
// 维度来源优先级：
//   - label[Key].Value
//   - Key 为 "brand" / "category" 时取商品对应字段
type Diversity struct {
	Key         string // 默认 "brand"
	MaxPerValue int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.Key
	if key == "" {
		key = "brand"
	}
	limit := n.MaxPerValue
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		v := valueOf(it, key)
		if v == "" {
			out = append(out, it)
			continue
		}
		if seen[v] >= limit {
			continue
		}
		seen[v]++
		out = append(out, it)
	}
	return out, nil
}

func valueOf(it *core.Item, key string) string {
	if v := it.Label(key); v != "" {
		return v
	}
	switch key {
	case "brand":
		return it.Brand
	case "category":
		return it.Category
	}
	return ""
}
