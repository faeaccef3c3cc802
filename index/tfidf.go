package index

import (
	"math"
	"sort"

	"github.com/rushteam/hybridrec/text"
)

// SparseVector 是按列号升序存储的稀疏向量。
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot 计算两个稀疏向量的内积（列号均升序，归并求和）。
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm 返回 L2 范数。
func (v SparseVector) Norm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return math.Sqrt(s)
}

// TfidfVectorizer 把文档集合转换为 TF-IDF 加权、L2 归一化的稀疏向量。
//
// 权重定义：
//   - tf: 词项在文档中的原始出现次数
//   - idf: ln((1+n)/(1+df)) + 1（平滑，避免除零，且出现在所有文档中的词仍有正权重）
//
// 分词规则见 text.Tokenize（>= 2 个单词字符、小写、去英文停用词）。
type TfidfVectorizer struct {
	// Tokenizer 可替换分词器，为空时使用 text.Tokenize
	Tokenizer func(doc string) []string

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// Fit 在 docs 上学习词表与 idf，并返回每篇文档的向量。
func (v *TfidfVectorizer) Fit(docs []string) []SparseVector {
	tokenize := v.Tokenizer
	if tokenize == nil {
		tokenize = text.Tokenize
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, tok := range tokenize(doc) {
			c[tok]++
		}
		for tok := range c {
			df[tok]++
		}
		counts[i] = c
	}

	// 词表按字典序分配列号，保证构建结果与输入 map 迭代顺序无关
	v.terms = make([]string, 0, len(df))
	for tok := range df {
		v.terms = append(v.terms, tok)
	}
	sort.Strings(v.terms)
	v.vocabulary = make(map[string]int, len(v.terms))
	v.idf = make([]float64, len(v.terms))
	n := float64(len(docs))
	for col, tok := range v.terms {
		v.vocabulary[tok] = col
		v.idf[col] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	out := make([]SparseVector, len(docs))
	for i, c := range counts {
		out[i] = v.vectorize(c)
	}
	return out
}

// VocabularySize 返回词表大小。
func (v *TfidfVectorizer) VocabularySize() int {
	return len(v.terms)
}

func (v *TfidfVectorizer) vectorize(counts map[string]int) SparseVector {
	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for tok := range counts {
		vec.Indices = append(vec.Indices, v.vocabulary[tok])
	}
	sort.Ints(vec.Indices)
	for _, col := range vec.Indices {
		vec.Values = append(vec.Values, float64(counts[v.terms[col]])*v.idf[col])
	}
	if norm := vec.Norm(); norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}
