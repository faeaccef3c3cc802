// Package store 只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// 示例：
//
//	var s core.KeyValueStore = store.NewMemoryStore()
//	s, err := store.Open(ctx, store.Options{Type: "redis", Addr: "localhost:6379"})
package store

import (
	"context"
	"fmt"

	"github.com/rushteam/hybridrec/core"
)

// Options 描述一个存储后端。
type Options struct {
	Type string // none / memory / redis
	Addr string
	DB   int
}

// Open 按 Options 打开存储后端；Type 为空或 "none" 时返回 (nil, nil)。
func Open(ctx context.Context, opts Options) (core.KeyValueStore, error) {
	switch opts.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(ctx, opts.Addr, opts.DB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrStoreNotSupported, opts.Type)
	}
}
