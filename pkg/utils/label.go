package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由业务自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / engine ...
}

// 链路中约定的 Label key。
const (
	LabelRecallSource = "recall_source" // content / user_cf / top_rated
	LabelRecallScore  = "recall_score"  // 召回源给出的相似度，格式化为字符串
	LabelSimilarUser  = "similar_user"  // user_cf：候选来自哪个相似用户
	LabelFiltered     = "filtered"
	LabelDegrade      = "degrade"
	LabelMiss         = "miss" // 请求级：某个召回源的查询对象不存在（例如未知商品名）
)

// MergeLabel 用于合并同名 Label，遵循“保留历史、可追踪”的默认策略。
//   - Value: 以 '|' 累积
//   - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
