// Package index 持有推荐引擎的两个相似度索引（内容 / 协同）以及共享的候选排序逻辑。
//
// 索引构建一次后只读，可被多个 goroutine 并发查询；重建通过重新 Build 完成，
// 由上层（recommend.Engine）负责替换，查询路径上永远不会隐式重建。
package index

import "sort"

// Scored 是相似度行中的一个候选：Row 为实体在索引中的行号，Score 为相似度。
type Scored struct {
	Row   int
	Score float64
}

// Rank 对相似度行按分数降序排序，排除 self 对应的实体，截断到 topN。
//   - 分数相同的实体保持原始行号顺序（稳定排序）
//   - topN <= 0 表示不截断
//   - self < 0 表示不排除任何实体
func Rank(row []float64, self int, topN int) []Scored {
	out := make([]Scored, 0, len(row))
	for i, s := range row {
		if i == self {
			continue
		}
		out = append(out, Scored{Row: i, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
