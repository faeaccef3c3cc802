package core

import "github.com/rushteam/hybridrec/pkg/utils"

// Item 是商品目录中的一行，同时也是推荐链路中的统一承载结构。
//
// ProdID 在目录中可能重复（同一商品的多条评价行）；Name 是面向用户的查询 key。
// Tags 由预处理阶段拼接 Category、Brand、Description 得到，是内容相似度的文本指纹。
// Score 与 Labels 只在推荐链路中写入，目录本身构建后只读。
type Item struct {
	ProdID      int64
	Name        string
	Brand       string
	Category    string
	Description string
	Tags        string
	Rating      float64
	ReviewCount int
	ImageURL    string

	Score  float64
	Labels map[string]utils.Label
}

// Clone 返回一份可写副本，Labels 深拷贝，避免污染只读目录。
func (it *Item) Clone() *Item {
	out := *it
	out.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		out.Labels[k] = v
	}
	return &out
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Label 读取 Label 的值，不存在时返回空串。
func (it *Item) Label(key string) string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[key].Value
}

// RatingObservation 是一条 (用户, 商品, 评分) 观测。
// 同一 (UserID, ProdID) 可出现多次，构建用户×商品矩阵时取均值。
type RatingObservation struct {
	UserID int64
	ProdID int64
	Rating float64
}

// Observations 从目录行中派生评分观测，userIDs 与 items 按下标一一对应。
func Observations(userIDs []int64, items []Item) []RatingObservation {
	n := len(items)
	if len(userIDs) < n {
		n = len(userIDs)
	}
	out := make([]RatingObservation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RatingObservation{
			UserID: userIDs[i],
			ProdID: items[i].ProdID,
			Rating: items[i].Rating,
		})
	}
	return out
}
