// Package text 是预处理阶段的文本清洗协作者：normalize(rawText) -> cleanedTagString。
package text

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// TagSeparator 是清洗后标签之间的分隔符。
const TagSeparator = ", "

// Normalizer 把原始文本转换为清洗后的标签串。
type Normalizer interface {
	Normalize(raw string) string
}

// NormalizerFunc 让普通函数满足 Normalizer。
type NormalizerFunc func(raw string) string

func (f NormalizerFunc) Normalize(raw string) string { return f(raw) }

// Default 是内置清洗器：小写、只保留纯字母 token、去停用词，以 ", " 连接。
var Default Normalizer = NormalizerFunc(Normalize)

// Normalize 小写化 raw，按空白与标点切分，丢弃含数字的 token（如 "15ml"）与停用词，
// 以 TagSeparator 连接。
func Normalize(raw string) string {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	tokens = lo.Filter(tokens, func(t string, _ int) bool {
		return isAlpha(t) && !IsStopWord(t)
	})
	return strings.Join(tokens, TagSeparator)
}

// BuildTags 依次清洗 category、brand、description 并拼接为商品的 Tags。
// 与预处理一致：三个字段各自清洗后以 ", " 连接，空字段保留为空段。
func BuildTags(n Normalizer, category, brand, description string) string {
	if n == nil {
		n = Default
	}
	return strings.Join([]string{
		n.Normalize(category),
		n.Normalize(brand),
		n.Normalize(description),
	}, TagSeparator)
}

// Tokenize 是 TF-IDF 的分词规则：小写化后取长度 >= 2 的单词字符（字母、数字、下划线）串，
// 去掉停用词。
func Tokenize(doc string) []string {
	words := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
