package recall

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// MergeStrategy 决定多个召回源的结果如何合并。
// groups 与 Fanout.Sources 一一对应，顺序即优先级。
type MergeStrategy interface {
	Merge(groups [][]*core.Item, dedup bool) []*core.Item
}

// FirstMergeStrategy 按 Sources 顺序拼接，按 Name 去重并保留第一次出现的商品；
// 被去掉的重复商品的 Labels 合并到保留者上，便于 explain。
type FirstMergeStrategy struct{}

func (FirstMergeStrategy) Merge(groups [][]*core.Item, dedup bool) []*core.Item {
	var out []*core.Item
	seen := make(map[string]*core.Item)
	for _, items := range groups {
		for _, it := range items {
			if it == nil {
				continue
			}
			if !dedup {
				out = append(out, it)
				continue
			}
			if old, ok := seen[it.Name]; ok {
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			seen[it.Name] = it
			out = append(out, it)
		}
	}
	return out
}

// UnionMergeStrategy 按 Sources 顺序拼接所有结果，不去重。
type UnionMergeStrategy struct{}

func (UnionMergeStrategy) Merge(groups [][]*core.Item, _ bool) []*core.Item {
	var out []*core.Item
	for _, items := range groups {
		out = append(out, items...)
	}
	return out
}

// Fanout 是一个 Recall Node：并发执行多个召回源，并按 Sources 顺序合并结果。
// 合并结果与各召回源完成的先后无关。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy MergeStrategy // 为空时使用 FirstMergeStrategy

	// Strict 为 true 时任一召回源出错即整体失败并返回该错误；
	// 否则出错的召回源按空结果处理。
	Strict bool
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	groups := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		s := src
		priority := i

		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				if n.Strict {
					return err
				}
				log.Logger().Warn("recall source failed, treated as empty",
					zap.String("source", s.Name()), zap.Error(err))
				return nil
			}

			for _, it := range items {
				it.PutLabel(utils.LabelRecallSource, utils.Label{Value: s.Name(), Source: "recall"})
				it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(priority), Source: "recall"})
			}
			// 每个 goroutine 只写自己的槽位
			groups[priority] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	strategy := n.MergeStrategy
	if strategy == nil {
		strategy = FirstMergeStrategy{}
	}
	return strategy.Merge(groups, n.Dedup), nil
}
