package filter

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rushteam/hybridrec/core"
)

// BlacklistFilter 是黑名单过滤器，按商品 Name 或 ProdID 过滤。
type BlacklistFilter struct {
	names   mapset.Set[string]
	prodIDs mapset.Set[int64]
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(names []string, prodIDs []int64) *BlacklistFilter {
	return &BlacklistFilter{
		names:   mapset.NewSet(names...),
		prodIDs: mapset.NewSet(prodIDs...),
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.names.Contains(item.Name) || f.prodIDs.Contains(item.ProdID), nil
}
