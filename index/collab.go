package index

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/log"
)

// UserScore 是一个相似用户及其与目标用户的余弦相似度。
type UserScore struct {
	UserID int64
	Score  float64
}

// CollabIndex 是基于用户×商品评分矩阵的用户相似度索引。
//
// 评分矩阵是稠密的：行是去重后升序排列的 UserID，列是升序排列的 ProdID，
// 同一 (用户, 商品) 的多次评分取均值，未观测位置填 0。
// 注意：0 既表示“未交互”也表示“评分为 0”，两者无法区分。
// 内存为 O(U·I)，相似度矩阵构建为 O(U²·I)，是整个系统的扩展性瓶颈。
type CollabIndex struct {
	users   []int64
	userRow map[int64]int
	items   []int64
	itemCol map[int64]int
	ratings *mat.Dense    // U×I，空索引时为 nil
	sim     *mat.SymDense // U×U，空索引时为 nil
}

// BuildCollabIndex 把评分观测透视为用户×商品矩阵，并计算用户间余弦相似度。
func BuildCollabIndex(ctx context.Context, observations []core.RatingObservation) (*CollabIndex, error) {
	start := time.Now()
	type cell struct {
		user, item int64
	}
	sums := make(map[cell]float64, len(observations))
	counts := make(map[cell]int, len(observations))
	userSet := make(map[int64]struct{})
	itemSet := make(map[int64]struct{})
	for _, o := range observations {
		k := cell{user: o.UserID, item: o.ProdID}
		sums[k] += o.Rating
		counts[k]++
		userSet[o.UserID] = struct{}{}
		itemSet[o.ProdID] = struct{}{}
	}

	idx := &CollabIndex{
		users:   sortedKeys(userSet),
		items:   sortedKeys(itemSet),
		userRow: make(map[int64]int, len(userSet)),
		itemCol: make(map[int64]int, len(itemSet)),
	}
	for i, u := range idx.users {
		idx.userRow[u] = i
	}
	for j, p := range idx.items {
		idx.itemCol[p] = j
	}

	nUsers, nItems := len(idx.users), len(idx.items)
	if nUsers == 0 || nItems == 0 {
		log.Logger().Info("collaborative index is empty")
		return idx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.ratings = mat.NewDense(nUsers, nItems, nil)
	for k, s := range sums {
		idx.ratings.Set(idx.userRow[k.user], idx.itemCol[k.item], s/float64(counts[k]))
	}

	// 行归一化后 X·Xᵀ 即为余弦相似度；零向量行保持为零，与所有用户的相似度为 0
	normalized := mat.DenseCopyOf(idx.ratings)
	for i := 0; i < nUsers; i++ {
		row := normalized.RawRowView(i)
		var s float64
		for _, x := range row {
			s += x * x
		}
		if s == 0 {
			continue
		}
		inv := 1 / math.Sqrt(s)
		for j := range row {
			row[j] *= inv
		}
	}
	idx.sim = mat.NewSymDense(nUsers, nil)
	idx.sim.SymOuterK(1, normalized)

	log.Logger().Info("collaborative index built",
		zap.Int("n_users", nUsers),
		zap.Int("n_items", nItems),
		zap.Int("n_observations", len(observations)),
		zap.Duration("used_time", time.Since(start)))
	return idx, nil
}

func sortedKeys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UserCount 返回用户数。
func (c *CollabIndex) UserCount() int { return len(c.users) }

// ItemCount 返回商品列数。
func (c *CollabIndex) ItemCount() int { return len(c.items) }

// HasUser 判断用户是否在矩阵中。
func (c *CollabIndex) HasUser(userID int64) bool {
	_, ok := c.userRow[userID]
	return ok
}

// UserAt 返回第 row 行的 UserID。
func (c *CollabIndex) UserAt(row int) int64 { return c.users[row] }

// ItemAt 返回第 col 列的 ProdID。
func (c *CollabIndex) ItemAt(col int) int64 { return c.items[col] }

// Rating 返回用户对商品的均值评分，未观测或任一 ID 不存在时为 0。
func (c *CollabIndex) Rating(userID, prodID int64) float64 {
	i, ok := c.userRow[userID]
	if !ok {
		return 0
	}
	j, ok := c.itemCol[prodID]
	if !ok {
		return 0
	}
	return c.ratings.At(i, j)
}

// RatingRow 返回用户的评分行（只读视图，按 ItemAt 列序）。
func (c *CollabIndex) RatingRow(userID int64) ([]float64, error) {
	i, ok := c.userRow[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return c.ratings.RawRowView(i), nil
}

// Similarity 返回两个用户的余弦相似度，任一用户不存在时为 0。
func (c *CollabIndex) Similarity(a, b int64) float64 {
	i, ok := c.userRow[a]
	if !ok {
		return 0
	}
	j, ok := c.userRow[b]
	if !ok {
		return 0
	}
	return c.sim.At(i, j)
}

// SimilarUsers 返回除目标用户外的所有用户，按相似度降序，同分按 UserID 升序（行序）。
// 本层不截断；目标用户不存在（包括空索引）时返回 ErrUserNotFound。
func (c *CollabIndex) SimilarUsers(userID int64) ([]UserScore, error) {
	row, ok := c.userRow[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	scores := make([]float64, c.UserCount())
	for j := range scores {
		scores[j] = c.sim.At(row, j)
	}
	ranked := Rank(scores, row, 0)
	out := make([]UserScore, len(ranked))
	for i, s := range ranked {
		out[i] = UserScore{UserID: c.users[s.Row], Score: s.Score}
	}
	return out, nil
}
