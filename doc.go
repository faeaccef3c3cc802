// Package hybridrec 是一个面向商品评价目录的混合推荐引擎。
//
// 设计要点：
// - 三类召回：评分榜单（top rated）、内容相似（TF-IDF 余弦）、基于用户的协同过滤
// - 混合推荐 = 内容召回 ∪ 协同召回，按召回源顺序合并、按商品名去重
// - Pipeline-first: 召回之后的过滤 / 重排通过 Node 串联，可由 YAML 配置
// - Labels-first: 每个候选携带召回来源、分数等 Label，便于 explain
//
// 推荐入口见 recommend.Engine，命令行见 cmd/hybridrec。
package hybridrec

import "github.com/rushteam/hybridrec/pipeline"

// 轻量 facade：便于直接 import "hybridrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
