package recall

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// RatedItem 是评分榜单中的一个逻辑商品：(Name, ReviewCount, Brand, ImageURL) 相同的行视为同一商品，
// Rating 为组内评分均值。
type RatedItem struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Brand       string  `json:"brand"`
	ImageURL    string  `json:"image_url"`
}

// Member 返回商品在有序集合中的成员名，编码完整的分组键，同名不同组的商品互不覆盖。
func (ri RatedItem) Member() string {
	return ri.Name + "|" + strconv.Itoa(ri.ReviewCount) + "|" + ri.Brand + "|" + ri.ImageURL
}

type ratedKey struct {
	name        string
	reviewCount int
	brand       string
	imageURL    string
}

// TopRatedItems 按 (Name, ReviewCount, Brand, ImageURL) 分组求评分均值，降序排列后返回前 n 个。
// 分组顺序为组在 items 中首次出现的顺序，均值相同的组保持该顺序。n <= 0 时取 10。
func TopRatedItems(items []core.Item, n int) []RatedItem {
	if n <= 0 {
		n = defaultTopN
	}
	pos := make(map[ratedKey]int)
	var (
		groups []RatedItem
		counts []int
	)
	for _, it := range items {
		k := ratedKey{name: it.Name, reviewCount: it.ReviewCount, brand: it.Brand, imageURL: it.ImageURL}
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, RatedItem{
				Name:        it.Name,
				ReviewCount: it.ReviewCount,
				Brand:       it.Brand,
				ImageURL:    it.ImageURL,
			})
			counts = append(counts, 0)
		}
		groups[i].Rating += it.Rating
		counts[i]++
	}
	for i := range groups {
		groups[i].Rating /= float64(counts[i])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Rating > groups[j].Rating
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// TopRated 是非个性化的评分榜单召回源，同时实现了 Source 和 Node 接口。
//   - Store 为空：每次从 Catalog 计算
//   - Store 非空：优先读取 Key 下的 JSON 榜单，缺失时计算并回写（TTL 秒）
//
// Publish 额外把榜单写入 Key+":zset" 有序集合，供外部按分数读取；
// 有序集合对同分成员按字典序排列，因此召回本身不从有序集合读取。
type TopRated struct {
	Catalog Catalog
	Store   core.KeyValueStore
	Key     string
	TTL     int

	// N 在 rctx.TopN 未设置时生效
	N int
}

func (r *TopRated) Name() string        { return "recall.top_rated" }
func (r *TopRated) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *TopRated) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，返回的 Item.Rating 为组内均值。
func (r *TopRated) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	ranked, err := r.Top(ctx, topNOf(rctx, r.N))
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, 0, len(ranked))
	for _, ri := range ranked {
		it := &core.Item{
			Name:        ri.Name,
			Rating:      ri.Rating,
			ReviewCount: ri.ReviewCount,
			Brand:       ri.Brand,
			ImageURL:    ri.ImageURL,
			Score:       ri.Rating,
		}
		it.PutLabel(utils.LabelRecallScore, utils.Label{
			Value:  strconv.FormatFloat(ri.Rating, 'f', 4, 64),
			Source: "recall",
		})
		out = append(out, it)
	}
	return out, nil
}

// Top 返回前 n 个榜单商品。
func (r *TopRated) Top(ctx context.Context, n int) ([]RatedItem, error) {
	if r.Store != nil && r.Key != "" {
		data, err := r.Store.Get(ctx, r.Key)
		if err == nil {
			var cached []RatedItem
			if json.Unmarshal(data, &cached) == nil && len(cached) >= n {
				return cached[:n], nil
			}
		} else if !core.IsStoreNotFound(err) {
			log.Logger().Warn("read top rated from store", zap.String("key", r.Key), zap.Error(err))
		}
	}

	var items []core.Item
	if r.Catalog != nil {
		items = r.Catalog.Items()
	}
	ranked := TopRatedItems(items, n)

	if r.Store != nil && r.Key != "" {
		if data, err := json.Marshal(ranked); err == nil {
			if err := r.Store.Set(ctx, r.Key, data, r.TTL); err != nil {
				log.Logger().Warn("write top rated to store", zap.String("key", r.Key), zap.Error(err))
			}
		}
	}
	return ranked, nil
}

// Publish 计算完整榜单，写入 JSON 缓存与有序集合（member 见 RatedItem.Member）。
func (r *TopRated) Publish(ctx context.Context) error {
	if r.Store == nil || r.Key == "" {
		return nil
	}
	var items []core.Item
	if r.Catalog != nil {
		items = r.Catalog.Items()
	}
	ranked := TopRatedItems(items, len(items))
	data, err := json.Marshal(ranked)
	if err != nil {
		return err
	}
	if err := r.Store.Set(ctx, r.Key, data, r.TTL); err != nil {
		return err
	}
	for _, ri := range ranked {
		if err := r.Store.ZAdd(ctx, r.Key+":zset", ri.Rating, ri.Member()); err != nil {
			return err
		}
	}
	return nil
}
