// Package recommend 是混合推荐引擎的对外入口：持有内容与协同两个相似度索引，
// 提供评分榜单、内容推荐、协同推荐、混合推荐四个操作。
//
// 索引在 New / Rebuild 时构建一次，之后只读；查询读取当前快照，Rebuild 原子替换快照，
// 因此并发查询不会看到构建到一半的索引。
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/config"
	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/filter"
	"github.com/rushteam/hybridrec/index"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/pkg/utils"
	"github.com/rushteam/hybridrec/recall"
	"github.com/rushteam/hybridrec/rerank"
)

// Result 是一次推荐的结果。
//
// Miss 为 true 表示查询对象不存在（未知商品名），与“存在但没有候选”的空结果区分；
// Degraded 为 true 表示混合推荐因未知用户降级为只用内容召回。
type Result struct {
	Items    []*core.Item `json:"items"`
	Miss     bool         `json:"miss"`
	Degraded bool         `json:"degraded"`
}

type snapshot struct {
	generation uint64
	content    *index.ContentIndex
	collab     *index.CollabIndex
	topRated   *recall.TopRated
}

// Engine 是混合推荐引擎。
type Engine struct {
	cfg   *config.EngineConfig
	store core.KeyValueStore
	post  []pipeline.Node

	rebuildMu sync.Mutex
	snap      atomic.Pointer[snapshot]
}

// Option 配置 Engine。
type Option func(*Engine)

// WithConfig 使用给定配置，默认 config.DefaultEngineConfig()。
func WithConfig(cfg *config.EngineConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithStore 启用结果缓存与评分榜单存储。
func WithStore(s core.KeyValueStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithNodes 在默认后处理之前插入自定义 Node（过滤 / 多样性等）。
func WithNodes(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.post = append(e.post, nodes...) }
}

// New 构建两个索引并返回引擎。配置中的 pipeline.nodes 通过 config 注册表构建，
// 需要入口处 import _ "github.com/rushteam/hybridrec/config/builders"。
func New(ctx context.Context, items []core.Item, observations []core.RatingObservation, opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg == nil {
		e.cfg = config.DefaultEngineConfig()
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(e.cfg.Pipeline.Nodes) > 0 {
		nodes, err := pipeline.BuildNodes(e.cfg.Pipeline.Nodes, config.DefaultFactory())
		if err != nil {
			return nil, err
		}
		e.post = append(e.post, nodes...)
	}
	if err := e.Rebuild(ctx, items, observations); err != nil {
		return nil, err
	}
	return e, nil
}

// Rebuild 用新数据重新构建两个索引并原子替换；失败时保留旧索引。
// 旧代数的缓存 key 不再被读取，随 TTL 过期。
func (e *Engine) Rebuild(ctx context.Context, items []core.Item, observations []core.RatingObservation) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()
	content, err := index.BuildContentIndex(ctx, items)
	if err != nil {
		return fmt.Errorf("build content index: %w", err)
	}
	BuildIndexSeconds.WithLabelValues("content").Set(time.Since(start).Seconds())

	start = time.Now()
	collab, err := index.BuildCollabIndex(ctx, observations)
	if err != nil {
		return fmt.Errorf("build collaborative index: %w", err)
	}
	BuildIndexSeconds.WithLabelValues("collaborative").Set(time.Since(start).Seconds())

	var generation uint64 = 1
	if old := e.snap.Load(); old != nil {
		generation = old.generation + 1
	}
	snap := &snapshot{
		generation: generation,
		content:    content,
		collab:     collab,
		topRated: &recall.TopRated{
			Catalog: content,
			Store:   e.store,
			Key:     e.cacheKey(generation, "top_rated"),
			TTL:     e.cfg.Cache.TTL,
		},
	}
	if e.store != nil {
		if err := snap.topRated.Publish(ctx); err != nil {
			log.Logger().Warn("publish top rated", zap.Error(err))
		}
	}
	e.snap.Store(snap)
	IndexGeneration.Set(float64(generation))
	log.Logger().Info("engine indexes ready",
		zap.Uint64("generation", generation),
		zap.Int("n_items", content.Len()),
		zap.Int("n_users", collab.UserCount()))
	return nil
}

// Generation 返回当前索引代数，每次 Rebuild 成功后加一。
func (e *Engine) Generation() uint64 {
	return e.snap.Load().generation
}

// ContentIndex 返回当前内容索引（只读）。
func (e *Engine) ContentIndex() *index.ContentIndex {
	return e.snap.Load().content
}

// CollabIndex 返回当前协同索引（只读）。
func (e *Engine) CollabIndex() *index.CollabIndex {
	return e.snap.Load().collab
}

func (e *Engine) topN(n int) int {
	if n > 0 {
		return n
	}
	return e.cfg.Recommend.TopN
}

// TopRated 返回非个性化的评分榜单前 n 个。
func (e *Engine) TopRated(ctx context.Context, n int) ([]recall.RatedItem, error) {
	snap := e.snap.Load()
	items, err := snap.topRated.Top(ctx, e.topN(n))
	status := "ok"
	if err != nil {
		status = "error"
	}
	RequestsTotal.WithLabelValues("top_rated", status).Inc()
	return items, err
}

// ContentRecommend 返回与 itemName 最相似的 topN 个其他商品。
// 未知商品名（或空目录）返回 Miss=true 的空结果，不返回错误。
func (e *Engine) ContentRecommend(ctx context.Context, itemName string, topN int) (res *Result, err error) {
	defer func() { observe("content", res, err) }()
	snap := e.snap.Load()
	topN = e.topN(topN)
	key := e.cacheKey(snap.generation, "content", itemName, topN)
	if cached, ok := e.loadCache(ctx, "content", key); ok {
		return cached, nil
	}

	if _, ok := snap.content.Lookup(itemName); !ok {
		log.Logger().Debug("content recommend miss", zap.String("item_name", itemName))
		return &Result{Miss: true}, nil
	}
	rctx := &core.RecommendContext{ItemName: itemName, TopN: topN}
	src := &recall.ContentRecall{Index: snap.content}
	items, err := e.run(ctx, rctx, &recall.Fanout{Sources: []recall.Source{src}})
	if err != nil {
		return nil, fmt.Errorf("content recommend: %w", err)
	}
	res = &Result{Items: items}
	e.saveCache(ctx, key, res)
	return res, nil
}

// CollaborativeRecommend 返回相似用户评分过、目标用户未评分的商品。
// 未知用户返回 core.ErrUserNotFound。
func (e *Engine) CollaborativeRecommend(ctx context.Context, userID int64, topN int) (res *Result, err error) {
	defer func() { observe("collaborative", res, err) }()
	snap := e.snap.Load()
	topN = e.topN(topN)
	key := e.cacheKey(snap.generation, "collaborative", userID, topN)
	if cached, ok := e.loadCache(ctx, "collaborative", key); ok {
		return cached, nil
	}

	rctx := &core.RecommendContext{UserID: userID, HasUser: true, TopN: topN}
	items, err := e.run(ctx, rctx, &recall.Fanout{
		Dedup:   true,
		Strict:  true,
		Sources: []recall.Source{e.userCF(snap)},
	})
	if err != nil {
		return nil, fmt.Errorf("collaborative recommend: %w", err)
	}
	res = &Result{Items: items}
	e.saveCache(ctx, key, res)
	return res, nil
}

// HybridRecommend 先取内容推荐，再取协同推荐，按 Name 去重后截断到 topN。
//
// 未知商品名时内容部分为空（Miss=true），协同部分照常进行；
// 未知用户时默认返回 core.ErrUserNotFound，配置 on_unknown_user: content_only 时降级为只用内容召回。
func (e *Engine) HybridRecommend(ctx context.Context, userID int64, itemName string, topN int) (res *Result, err error) {
	defer func() { observe("hybrid", res, err) }()
	snap := e.snap.Load()
	topN = e.topN(topN)
	key := e.cacheKey(snap.generation, "hybrid", userID, itemName, topN)
	if cached, ok := e.loadCache(ctx, "hybrid", key); ok {
		return cached, nil
	}

	res = &Result{}
	rctx := &core.RecommendContext{UserID: userID, HasUser: true, ItemName: itemName, TopN: topN}
	if _, ok := snap.content.Lookup(itemName); !ok {
		res.Miss = true
		rctx.PutLabel(utils.LabelMiss, utils.Label{Value: "content", Source: "engine"})
	}
	if !snap.collab.HasUser(userID) {
		if e.cfg.Recommend.OnUnknownUser != config.OnUnknownUserContentOnly {
			return nil, fmt.Errorf("hybrid recommend: user %d: %w", userID, core.ErrUserNotFound)
		}
		log.Logger().Debug("hybrid recommend degraded to content only", zap.Int64("user_id", userID))
		rctx.HasUser = false
		rctx.PutLabel(utils.LabelDegrade, utils.Label{Value: config.OnUnknownUserContentOnly, Source: "engine"})
		res.Degraded = true
	}

	items, err := e.run(ctx, rctx, &recall.Fanout{
		Dedup:   true,
		Strict:  true,
		Timeout: e.cfg.Recommend.FanoutTimeout,
		Sources: []recall.Source{
			&recall.ContentRecall{Index: snap.content},
			e.userCF(snap),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid recommend: %w", err)
	}
	res.Items = items
	e.saveCache(ctx, key, res)
	return res, nil
}

func (e *Engine) userCF(snap *snapshot) *recall.UserCFRecall {
	return &recall.UserCFRecall{
		Index:     snap.collab,
		Catalog:   snap.content,
		StrictCap: e.cfg.Recommend.StrictCFCap,
	}
}

// run 执行 召回 → 自定义后处理 → Name 去重 → TopN 截断。
// 纯内容推荐不做 Name 去重，保持相似度查询的原始结果。
func (e *Engine) run(ctx context.Context, rctx *core.RecommendContext, fanout *recall.Fanout) ([]*core.Item, error) {
	nodes := []pipeline.Node{fanout}
	nodes = append(nodes, e.post...)
	if fanout.Dedup {
		nodes = append(nodes, &filter.NameDedup{})
	}
	nodes = append(nodes, &rerank.TopNNode{N: rctx.TopN})
	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.Item{}
	}
	return items, nil
}

// IsUserNotFound 判断错误是否为未知用户。
func IsUserNotFound(err error) bool {
	return errors.Is(err, core.ErrUserNotFound)
}
