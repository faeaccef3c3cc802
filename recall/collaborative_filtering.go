package recall

import (
	"context"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/index"
	"github.com/rushteam/hybridrec/pkg/utils"
)

// UserCFRecall 是基于用户的协同过滤召回源（User-Based Collaborative Filtering）。
//
// 核心思想："和你评分相似的用户喜欢的商品，你也可能喜欢"
//
// 流程：
//  1. 从 CollabIndex 取出目标用户之外的所有用户，按相似度降序
//  2. 依次扫描相似用户，收集其评分 > 0 且目标用户评分 == 0 的商品，
//     每个相似用户最多贡献 TopN 个（按 ProdID 升序）
//  3. 按目录行序回填商品详情，按 Name 去重，截断到 TopN
//
// 默认不设全局累计上限：每个相似用户都会被扫描，截断只发生在最后一步。
// StrictCap 为 true 时，候选数达到 TopN 即停止扫描后续相似用户。
type UserCFRecall struct {
	Index   *index.CollabIndex
	Catalog Catalog

	// TopK 在 rctx.TopN 未设置时生效
	TopK int

	StrictCap bool
}

func (r *UserCFRecall) Name() string {
	return "recall.user_cf"
}

// Recall 目标用户不在评分矩阵中时返回 core.ErrUserNotFound。
func (r *UserCFRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || !rctx.HasUser {
		return nil, nil
	}
	topN := topNOf(rctx, r.TopK)

	candidates, err := r.Candidates(ctx, rctx.UserID, topN)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 || r.Catalog == nil {
		return nil, nil
	}

	seenNames := mapset.NewThreadUnsafeSet[string]()
	out := make([]*core.Item, 0, topN)
	for _, item := range r.Catalog.Items() {
		if len(out) >= topN {
			break
		}
		from, ok := candidates[item.ProdID]
		if !ok || seenNames.Contains(item.Name) {
			continue
		}
		seenNames.Add(item.Name)

		it := item.Clone()
		it.Score = from.Score
		it.PutLabel(utils.LabelSimilarUser, utils.Label{
			Value:  strconv.FormatInt(from.UserID, 10),
			Source: "recall",
		})
		it.PutLabel(utils.LabelRecallScore, utils.Label{
			Value:  strconv.FormatFloat(from.Score, 'f', 4, 64),
			Source: "recall",
		})
		out = append(out, it)
	}
	return out, nil
}

// Candidates 返回候选 ProdID 及其来源相似用户（取第一个贡献该商品的用户）。
func (r *UserCFRecall) Candidates(
	ctx context.Context,
	userID int64,
	topN int,
) (map[int64]index.UserScore, error) {
	target, err := r.Index.RatingRow(userID)
	if err != nil {
		return nil, err
	}
	similar, err := r.Index.SimilarUsers(userID)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]index.UserScore)
	for _, su := range similar {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Index.RatingRow(su.UserID)
		if err != nil {
			return nil, err
		}
		taken := 0
		for col, rating := range row {
			if taken >= topN {
				break
			}
			if rating <= 0 || target[col] != 0 {
				continue
			}
			taken++
			prodID := r.Index.ItemAt(col)
			if _, ok := out[prodID]; !ok {
				out[prodID] = su
			}
		}
		if r.StrictCap && len(out) >= topN {
			break
		}
	}
	return out, nil
}
