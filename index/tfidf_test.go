package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTfidfVectorizer_Fit(t *testing.T) {
	v := &TfidfVectorizer{}
	vecs := v.Fit([]string{"red shoe", "red hat", "the"})
	require.Len(t, vecs, 3)
	assert.Equal(t, 3, v.VocabularySize())
	assert.Equal(t, map[string]int{"hat": 0, "red": 1, "shoe": 2}, v.vocabulary)

	// 每个非空向量 L2 归一化
	for _, vec := range vecs[:2] {
		assert.InDelta(t, 1.0, vec.Norm(), 1e-9)
	}
	// 只有停用词的文档是零向量
	assert.Empty(t, vecs[2].Indices)

	// "red" 出现在两篇文档中，idf 比 "shoe" 小，因此在 doc0 中权重更低
	red := vecs[0].Values[0]
	shoe := vecs[0].Values[1]
	assert.Less(t, red, shoe)
	idfRed := math.Log(4.0/3.0) + 1
	idfShoe := math.Log(4.0/2.0) + 1
	assert.InDelta(t, idfRed/math.Hypot(idfRed, idfShoe), red, 1e-9)
}

func TestSparseVector_Dot(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := SparseVector{Indices: []int{2, 3, 5}, Values: []float64{4, 1, 1}}
	assert.Equal(t, 11.0, a.Dot(b))
	assert.Equal(t, a.Dot(b), b.Dot(a))
}
