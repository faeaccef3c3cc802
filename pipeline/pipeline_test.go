package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
)

type appendNode struct {
	name string
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindPostProcess }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, &core.Item{Name: n.name}), nil
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&appendNode{name: "a"}, &appendNode{name: "b"}}}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)

	boom := errors.New("boom")
	p.Nodes = append(p.Nodes, &appendNode{name: "c", err: boom})
	_, err = p.Run(context.Background(), &core.RecommendContext{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  name: post
  nodes:
    - type: test.append
      config:
        name: x
`), 0o644))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "post", cfg.Pipeline.Name)

	f := NewNodeFactory()
	f.Register("test.append", func(c map[string]any) (Node, error) {
		return &appendNode{name: c["name"].(string)}, nil
	})
	nodes, err := BuildNodes(cfg.Pipeline.Nodes, f)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "x", nodes[0].Name())

	_, err = f.Build("missing", nil)
	assert.Error(t, err)
}
