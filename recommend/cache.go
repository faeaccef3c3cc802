package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/log"
)

const cachePrefix = "hybridrec"

// cacheKey 形如 hybridrec:<generation>:<operation>:<arg>...；代数变化后旧 key 自然失效。
func (e *Engine) cacheKey(generation uint64, op string, args ...any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d:%s", cachePrefix, generation, op)
	for _, a := range args {
		fmt.Fprintf(&sb, ":%v", a)
	}
	return sb.String()
}

func (e *Engine) loadCache(ctx context.Context, op, key string) (*Result, bool) {
	if e.store == nil {
		return nil, false
	}
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			log.Logger().Warn("read result cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		log.Logger().Warn("decode result cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	CacheHitsTotal.WithLabelValues(op).Inc()
	return &res, true
}

func (e *Engine) saveCache(ctx context.Context, key string, res *Result) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		log.Logger().Warn("encode result cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, key, data, e.cfg.Cache.TTL); err != nil {
		log.Logger().Warn("write result cache", zap.String("key", key), zap.Error(err))
	}
}
