package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybridrec/pipeline"
)

// 未知用户时混合推荐的处理方式。
const (
	OnUnknownUserFail        = "fail"         // 透传 core.ErrUserNotFound
	OnUnknownUserContentOnly = "content_only" // 降级为只用内容召回
)

// EngineConfig 是推荐引擎的配置（YAML）。
//
//	data:
//	  catalog: ./walmart_5k.csv
//	recommend:
//	  top_n: 10
//	  on_unknown_user: fail
//	  strict_cf_cap: false
//	  fanout_timeout: 2s
//	cache:
//	  type: memory
//	  ttl: 300
//	pipeline:
//	  file: ./pipeline.yaml   # 可选，节点追加在 nodes 之后
//	  nodes:
//	    - type: rerank.diversity
type EngineConfig struct {
	Data      DataConfig      `yaml:"data"`
	Recommend RecommendConfig `yaml:"recommend"`
	Cache     CacheConfig     `yaml:"cache"`
	Pipeline  struct {
		// File 独立的 pipeline YAML（pipeline.LoadFromYAML 格式），相对路径按配置文件所在目录解析
		File  string                `yaml:"file"`
		Nodes []pipeline.NodeConfig `yaml:"nodes"`
	} `yaml:"pipeline"`
}

type DataConfig struct {
	// Catalog 商品评价 CSV 路径
	Catalog string `yaml:"catalog"`
}

type RecommendConfig struct {
	TopN          int           `yaml:"top_n"`
	OnUnknownUser string        `yaml:"on_unknown_user"`
	StrictCFCap   bool          `yaml:"strict_cf_cap"`
	FanoutTimeout time.Duration `yaml:"fanout_timeout"`
}

type CacheConfig struct {
	Type string `yaml:"type"` // none / memory / redis
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
	TTL  int    `yaml:"ttl"` // 秒
}

// DefaultEngineConfig 返回默认配置。
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Recommend: RecommendConfig{
			TopN:          10,
			OnUnknownUser: OnUnknownUserFail,
		},
		Cache: CacheConfig{
			Type: "none",
			TTL:  300,
		},
	}
}

// LoadEngineConfig 读取 YAML 并与默认值合并，随后校验。
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if file := cfg.Pipeline.File; file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}
		pc, err := pipeline.LoadFromYAML(file)
		if err != nil {
			return nil, fmt.Errorf("pipeline.file: %w", err)
		}
		cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pc.Pipeline.Nodes...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值。
func (c *EngineConfig) Validate() error {
	if c.Recommend.TopN <= 0 {
		return fmt.Errorf("recommend.top_n must be positive, got %d", c.Recommend.TopN)
	}
	switch c.Recommend.OnUnknownUser {
	case OnUnknownUserFail, OnUnknownUserContentOnly:
	default:
		return fmt.Errorf("recommend.on_unknown_user must be %q or %q, got %q",
			OnUnknownUserFail, OnUnknownUserContentOnly, c.Recommend.OnUnknownUser)
	}
	// 未知 cache.type 由 store.Open 报告 core.ErrStoreNotSupported
	if c.Cache.Type == "redis" && c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required for redis cache")
	}
	return ValidateNodeConfigs(c.Pipeline.Nodes)
}
