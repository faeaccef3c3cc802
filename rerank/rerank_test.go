package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/utils"
)

func sample() []*core.Item {
	return []*core.Item{
		{Name: "a", Brand: "OPI", Category: "nail"},
		{Name: "b", Brand: "OPI", Category: "hair"},
		{Name: "c", Brand: "", Category: "nail"},
		{Name: "d", Brand: "Essie", Category: "nail"},
		{Name: "e", Brand: "OPI", Category: "skin"},
	}
}

func namesOf(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rctx *core.RecommendContext
		want int
	}{
		{name: "explicit n", n: 2, want: 2},
		{name: "from context", rctx: &core.RecommendContext{TopN: 3}, want: 3},
		{name: "no limit", want: 5},
		{name: "n larger than items", n: 10, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&TopNNode{N: tt.n}).Process(context.Background(), tt.rctx, sample())
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDiversity(t *testing.T) {
	got, err := (&Diversity{}).Process(context.Background(), nil, sample())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, namesOf(got))

	got, err = (&Diversity{Key: "category", MaxPerValue: 2}).Process(context.Background(), nil, sample())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "e"}, namesOf(got))

	items := sample()
	items[1].PutLabel("brand", utils.Label{Value: "Other"})
	got, err = (&Diversity{}).Process(context.Background(), nil, items)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, namesOf(got))
}
