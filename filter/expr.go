package filter

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/dsl"
	"github.com/rushteam/hybridrec/pkg/log"
)

// ExprFilter 用 CEL 表达式过滤商品，表达式为 true 的商品被保留（Keep 语义）。
// Invert 为 true 时反转：表达式为 true 的商品被过滤。
// 执行出错（例如读取商品上不存在的 label）按表达式为 false 处理。
//
// 示例：item.rating >= 3.5 && item.brand != "" / has(label.similar_user)
type ExprFilter struct {
	program *dsl.Program
	Invert  bool
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	ok, err := f.program.Eval(item, rctx)
	if err != nil {
		log.Logger().Debug("expr filter eval", zap.String("expr", f.program.String()), zap.Error(err))
		ok = false
	}
	return ok == f.Invert, nil
}
