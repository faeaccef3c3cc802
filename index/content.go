package index

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/log"
)

// ContentIndex 是基于商品 Tags 的内容相似度索引。
//
// 构建时对所有商品的 Tags 做 TF-IDF 向量化，并一次性物化 I×I 的余弦相似度矩阵，
// 后续查询直接读取任意行。构建成本 O(I²·V)，只应在目录变化时显式重建。
type ContentIndex struct {
	items      []core.Item
	names      map[string]int // Name -> 第一次出现的行号
	vectors    []SparseVector
	vectorizer *TfidfVectorizer
	sim        *mat.SymDense // 空索引时为 nil
}

// BuildContentIndex 在 items 上构建内容索引。items 被复制，调用方之后的修改不影响索引。
// 相似度矩阵按行分块并发计算，ctx 取消时返回 ctx.Err()。
func BuildContentIndex(ctx context.Context, items []core.Item) (*ContentIndex, error) {
	start := time.Now()
	idx := &ContentIndex{
		items:      append([]core.Item(nil), items...),
		names:      make(map[string]int, len(items)),
		vectorizer: &TfidfVectorizer{},
	}
	docs := make([]string, len(idx.items))
	for i, it := range idx.items {
		if _, ok := idx.names[it.Name]; !ok {
			idx.names[it.Name] = i
		}
		docs[i] = it.Tags
	}
	idx.vectors = idx.vectorizer.Fit(docs)

	n := len(idx.items)
	if n == 0 {
		log.Logger().Info("content index is empty")
		return idx, nil
	}

	sim := mat.NewSymDense(n, nil)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		row := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// 只写上三角；SymDense 各元素存储位置互不重叠
			for j := row; j < n; j++ {
				sim.SetSym(row, j, idx.vectors[row].Dot(idx.vectors[j]))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	idx.sim = sim

	log.Logger().Info("content index built",
		zap.Int("n_items", n),
		zap.Int("n_terms", idx.vectorizer.VocabularySize()),
		zap.Duration("used_time", time.Since(start)))
	return idx, nil
}

// Len 返回索引中的商品行数。
func (c *ContentIndex) Len() int {
	return len(c.items)
}

// Item 返回第 row 行商品。
func (c *ContentIndex) Item(row int) core.Item {
	return c.items[row]
}

// Items 返回目录的只读视图，调用方不得修改。
func (c *ContentIndex) Items() []core.Item {
	return c.items
}

// Lookup 按 Name 精确匹配，重复时返回第一行。
func (c *ContentIndex) Lookup(name string) (int, bool) {
	row, ok := c.names[name]
	return row, ok
}

// Similarity 返回第 i、j 行商品的余弦相似度。
func (c *ContentIndex) Similarity(i, j int) float64 {
	return c.sim.At(i, j)
}

// Row 返回第 row 行商品与所有商品的相似度（新分配的切片）。
func (c *ContentIndex) Row(row int) []float64 {
	out := make([]float64, c.Len())
	for j := range out {
		out[j] = c.sim.At(row, j)
	}
	return out
}

// Vectorizer 返回构建时使用的向量化器。
func (c *ContentIndex) Vectorizer() *TfidfVectorizer {
	return c.vectorizer
}

// Query 返回与 name 最相似的 topN 个其他商品（排除自身），同分按行号稳定排序。
//   - 索引为空：ErrEmptyIndex
//   - name 不存在：ErrItemNotFound
func (c *ContentIndex) Query(name string, topN int) ([]Scored, error) {
	if c.Len() == 0 {
		return nil, core.ErrEmptyIndex
	}
	row, ok := c.Lookup(name)
	if !ok {
		return nil, core.ErrItemNotFound
	}
	return Rank(c.Row(row), row, topN), nil
}
