// Package dsl 用 CEL (Common Expression Language) 实现推荐结果上的条件表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/hybridrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，可并发执行。
//
// 表达式语法（CEL 标准语法）：
//   - 商品：item.rating >= 4.0 / item.brand == "OPI" / item.review_count > 10
//   - 召回：label.recall_source.contains("content") / item.score > 0.3
//   - 请求：rctx.top_n / rctx.item_name / rctx.params.min_rating / rctx.labels.degrade
//   - 存在性：has(label.similar_user)；读取不存在的 label 会返回错误而不是 null
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 在 item / rctx 上执行表达式。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 不存在的 key 在 CEL 中是错误；应使用 has(label.key) 判断存在性
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	item := map[string]any{}
	if it != nil {
		for k, v := range it.Labels {
			labels[k] = v.Value
		}
		item = map[string]any{
			"prod_id":      it.ProdID,
			"name":         it.Name,
			"brand":        it.Brand,
			"category":     it.Category,
			"tags":         it.Tags,
			"rating":       it.Rating,
			"review_count": it.ReviewCount,
			"image_url":    it.ImageURL,
			"score":        it.Score,
		}
	}

	rc := map[string]any{}
	if rctx != nil {
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rctxLabels := make(map[string]any, len(rctx.Labels))
		for k, v := range rctx.Labels {
			rctxLabels[k] = v.Value
		}
		rc = map[string]any{
			"labels":    rctxLabels,
			"user_id":   rctx.UserID,
			"has_user":  rctx.HasUser,
			"item_name": rctx.ItemName,
			"top_n":     rctx.TopN,
			"params":    params,
		}
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  rc,
	}
}
