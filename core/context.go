package core

import "github.com/rushteam/hybridrec/pkg/utils"

// RecommendContext 承载单次推荐请求的目标用户、种子商品与结果规模，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// UserID 目标用户；HasUser 为 false 时表示请求不涉及协同过滤
	UserID  int64
	HasUser bool

	// ItemName 种子商品名称，用于内容召回
	ItemName string

	// TopN 最终返回数量，同时是每个召回源的上限
	TopN int

	// Labels 是请求级标签，例如 degrade=content_only
	Labels map[string]utils.Label

	// Params 请求级参数，供 DSL 表达式读取
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}
