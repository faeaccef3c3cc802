package builders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/hybridrec/config"
	"github.com/rushteam/hybridrec/filter"
	"github.com/rushteam/hybridrec/pipeline"
	"github.com/rushteam/hybridrec/rerank"
)

func TestDefaultFactory(t *testing.T) {
	var nodes []pipeline.NodeConfig
	require.NoError(t, yaml.Unmarshal([]byte(`
- type: filter
  config:
    filters:
      - type: blacklist
        names: ["A"]
        prod_ids: [10, 20]
      - type: expr
        expr: item.rating >= 3.0
- type: filter.dedup
- type: rerank.diversity
  config:
    key: category
    max_per_value: 2
- type: rerank.topn
  config:
    n: 5
`), &nodes))
	require.NoError(t, config.ValidateNodeConfigs(nodes))

	built, err := pipeline.BuildNodes(nodes, config.DefaultFactory())
	require.NoError(t, err)
	require.Len(t, built, 4)

	fn, ok := built[0].(*filter.FilterNode)
	require.True(t, ok)
	assert.Len(t, fn.Filters, 2)
	assert.IsType(t, &filter.NameDedup{}, built[1])
	assert.Equal(t, &rerank.Diversity{Key: "category", MaxPerValue: 2}, built[2])
	assert.Equal(t, &rerank.TopNNode{N: 5}, built[3])
}

func TestBuildFilterNode_Errors(t *testing.T) {
	_, err := BuildFilterNode(map[string]any{})
	assert.Error(t, err)

	_, err = BuildFilterNode(map[string]any{"filters": []any{map[string]any{"type": "bogus"}}})
	assert.Error(t, err)

	_, err = BuildFilterNode(map[string]any{"filters": []any{map[string]any{"type": "expr"}}})
	assert.Error(t, err)

	assert.Error(t, config.ValidateNodeConfigs([]pipeline.NodeConfig{{Type: "rank.lr"}}))
}
