package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/utils"
)

func items() []*core.Item {
	return []*core.Item{
		{ProdID: 1, Name: "A", Brand: "OPI", Rating: 4.5},
		{ProdID: 2, Name: "B", Brand: "Essie", Rating: 2},
		{ProdID: 3, Name: "A", Brand: "OPI", Rating: 3},
		{ProdID: 4, Name: "C", Brand: "", Rating: 5},
	}
}

func names(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestFilterNode(t *testing.T) {
	expr, err := NewExprFilter(`item.rating >= 3.0`, false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{name: "no filters", filters: nil, want: []string{"A", "B", "A", "C"}},
		{name: "blacklist by name", filters: []Filter{NewBlacklistFilter([]string{"A"}, nil)}, want: []string{"B", "C"}},
		{name: "blacklist by prod id", filters: []Filter{NewBlacklistFilter(nil, []int64{4})}, want: []string{"A", "B", "A"}},
		{name: "expr keep", filters: []Filter{expr}, want: []string{"A", "A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &FilterNode{Filters: tt.filters}
			got, err := n.Process(context.Background(), &core.RecommendContext{}, items())
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterNode_LabelsFiltered(t *testing.T) {
	in := items()
	n := &FilterNode{Filters: []Filter{NewBlacklistFilter([]string{"B"}, nil)}}
	_, err := n.Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, "true", in[1].Label(utils.LabelFiltered))
	assert.Equal(t, "filter.blacklist", in[1].Labels[utils.LabelFiltered].Source)
}

func TestExprFilter_Invert(t *testing.T) {
	f, err := NewExprFilter(`item.brand == ""`, true)
	require.NoError(t, err)
	n := &FilterNode{Filters: []Filter{f}}
	got, err := n.Process(context.Background(), &core.RecommendContext{}, items())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, names(got))

	_, err = NewExprFilter(`item.rating >`, false)
	assert.Error(t, err)
}

func TestExprFilter_MissingLabel(t *testing.T) {
	cf := &core.Item{Name: "cf"}
	cf.PutLabel(utils.LabelSimilarUser, utils.Label{Value: "2", Source: "recall"})
	content := &core.Item{Name: "content"}

	tests := []struct {
		name   string
		expr   string
		invert bool
		want   []string
	}{
		{name: "has keeps labeled", expr: `has(label.similar_user)`, want: []string{"cf"}},
		{name: "has inverted", expr: `has(label.similar_user)`, invert: true, want: []string{"content"}},
		{name: "missing key is false", expr: `label.similar_user != null`, want: []string{"cf"}},
		{name: "missing key inverted", expr: `label.similar_user == "2"`, invert: true, want: []string{"content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewExprFilter(tt.expr, tt.invert)
			require.NoError(t, err)
			n := &FilterNode{Filters: []Filter{f}}
			got, err := n.Process(context.Background(), &core.RecommendContext{}, []*core.Item{cf.Clone(), content.Clone()})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestNameDedup(t *testing.T) {
	got, err := (&NameDedup{}).Process(context.Background(), nil, items())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(got))
	assert.Equal(t, int64(1), got[0].ProdID)
}
