package index

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
)

func TestCollabIndex_Build(t *testing.T) {
	idx, err := BuildCollabIndex(context.Background(), []core.RatingObservation{
		{UserID: 2, ProdID: 20, Rating: 5},
		{UserID: 1, ProdID: 10, Rating: 5},
		{UserID: 1, ProdID: 20, Rating: 0},
		{UserID: 2, ProdID: 10, Rating: 5},
		{UserID: 3, ProdID: 30, Rating: 4},
		{UserID: 3, ProdID: 30, Rating: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.UserCount())
	assert.Equal(t, 3, idx.ItemCount())
	assert.Equal(t, int64(1), idx.UserAt(0))
	assert.Equal(t, int64(10), idx.ItemAt(0))

	// 重复观测取均值，未观测填 0
	assert.Equal(t, 3.0, idx.Rating(3, 30))
	assert.Equal(t, 0.0, idx.Rating(1, 30))
	assert.Equal(t, 0.0, idx.Rating(99, 30))

	assert.InDelta(t, 25/(5*math.Sqrt(50)), idx.Similarity(1, 2), 1e-9)
	assert.Zero(t, idx.Similarity(1, 3))
	assert.InDelta(t, 1.0, idx.Similarity(3, 3), 1e-9)

	// 对称、非负、不超过 1
	n := idx.UserCount()
	for i := 0; i < n; i++ {
		u := idx.UserAt(i)
		for j := 0; j < n; j++ {
			v := idx.UserAt(j)
			sim := idx.Similarity(u, v)
			assert.InDelta(t, idx.Similarity(v, u), sim, 1e-12, "users %d, %d", u, v)
			assert.GreaterOrEqual(t, sim, 0.0)
			assert.LessOrEqual(t, sim, 1.0+1e-9)
		}
	}
}

func TestCollabIndex_SimilarUsers(t *testing.T) {
	idx, err := BuildCollabIndex(context.Background(), []core.RatingObservation{
		{UserID: 1, ProdID: 10, Rating: 5},
		{UserID: 2, ProdID: 10, Rating: 5},
		{UserID: 2, ProdID: 20, Rating: 5},
		{UserID: 3, ProdID: 30, Rating: 1},
		{UserID: 4, ProdID: 10, Rating: 3},
	})
	require.NoError(t, err)

	got, err := idx.SimilarUsers(1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(4), got[0].UserID)
	assert.Equal(t, int64(2), got[1].UserID)
	assert.Equal(t, int64(3), got[2].UserID)
	assert.Zero(t, got[2].Score)

	_, err = idx.SimilarUsers(42)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestCollabIndex_ZeroRowUser(t *testing.T) {
	idx, err := BuildCollabIndex(context.Background(), []core.RatingObservation{
		{UserID: 1, ProdID: 10, Rating: 0},
		{UserID: 2, ProdID: 10, Rating: 4},
	})
	require.NoError(t, err)
	got, err := idx.SimilarUsers(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, math.IsNaN(got[0].Score))
	assert.Zero(t, got[0].Score)
}

func TestCollabIndex_Empty(t *testing.T) {
	idx, err := BuildCollabIndex(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, idx.UserCount())
	_, err = idx.SimilarUsers(1)
	assert.True(t, core.IsNotFound(err))
	_, err = idx.RatingRow(1)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}
