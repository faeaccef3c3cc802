package filter

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
)

// NameDedup 按 Name 去重，保留第一次出现的商品，其余顺序不变。
type NameDedup struct{}

func (n *NameDedup) Name() string        { return "filter.dedup" }
func (n *NameDedup) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *NameDedup) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || seen.Contains(it.Name) {
			continue
		}
		seen.Add(it.Name)
		out = append(out, it)
	}
	return out, nil
}
