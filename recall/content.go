package recall

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/index"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户正在看的商品，推荐 Tags 文本最相似的其他商品"。
// 种子商品取自 rctx.ItemName；未知商品名或空索引时返回空结果而不是错误，
// 需要区分两者的调用方应直接使用 index.ContentIndex.Query。
type ContentRecall struct {
	Index *index.ContentIndex

	// TopK 在 rctx.TopN 未设置时生效
	TopK int
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || rctx.ItemName == "" {
		return nil, nil
	}

	scored, err := r.Index.Query(rctx.ItemName, topNOf(rctx, r.TopK))
	if err != nil {
		if errors.Is(err, core.ErrItemNotFound) || errors.Is(err, core.ErrEmptyIndex) {
			log.Logger().Debug("content recall miss",
				zap.String("item_name", rctx.ItemName), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		item := r.Index.Item(s.Row)
		it := item.Clone()
		it.Score = s.Score
		it.PutLabel(utils.LabelRecallScore, utils.Label{
			Value:  strconv.FormatFloat(s.Score, 'f', 4, 64),
			Source: "recall",
		})
		out = append(out, it)
	}
	return out, nil
}
