package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/text"
)

const sampleCSV = `Uniq Id,Product Id,Product Rating,Product Reviews Count,Product Category,Product Brand,Product Name,Product Image Url,Product Description,Product Tags
u1705,p2001,4.5,12,Beauty > Nail,OPI,Nail Polish Red,http://img/1,A long lasting polish,raw tags
u1705,p2002,,,"Beauty > Hair",,Shampoo,,,
u0002,p2001,3.5,12,Beauty > Nail,OPI,Nail Polish Red,http://img/1,A long lasting polish,
nodigits,p2003,5,1,Home,Acme,Lamp,,Bright lamp,
`

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV), Options{})
	require.NoError(t, err)
	require.Len(t, ds.Items, 4)

	first := ds.Items[0]
	assert.Equal(t, int64(2001), first.ProdID)
	assert.Equal(t, "Nail Polish Red", first.Name)
	assert.Equal(t, 4.5, first.Rating)
	assert.Equal(t, 12, first.ReviewCount)
	assert.Equal(t, "beauty, nail", first.Category)
	assert.Equal(t, "opi", first.Brand)
	assert.Equal(t, "beauty, nail, opi, long, lasting, polish", first.Tags)
	assert.Equal(t, int64(1705), ds.UserIDs[0])

	// 缺失值填充
	second := ds.Items[1]
	assert.Zero(t, second.Rating)
	assert.Zero(t, second.ReviewCount)
	assert.Equal(t, "", second.Brand)
	assert.Equal(t, "beauty, hair, , ", second.Tags)

	// 没有数字的 ID 不产生评分观测
	assert.False(t, ds.HasUser[3])
	obs := ds.Observations()
	assert.Len(t, obs, 3)
	assert.Equal(t, core.RatingObservation{UserID: 2, ProdID: 2001, Rating: 3.5}, obs[2])
}

func TestRead_KeepRawTags(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV), Options{
		KeepRawTags: true,
		Normalizer:  text.NormalizerFunc(strings.ToUpper),
	})
	require.NoError(t, err)
	assert.Equal(t, "raw tags", ds.Items[0].Tags)
	assert.Equal(t, "OPI", ds.Items[0].Brand)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(""), Options{})
	assert.True(t, core.IsInvalidInput(err))

	_, err = Read(strings.NewReader("Product Name\nfoo\n"), Options{})
	assert.True(t, core.IsInvalidInput(err))

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	ds, err := LoadCSV(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 4, Users: 2, Items: 3, Ratings: 4}, ds.Stats())
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantOK  bool
		wantErr bool
	}{
		{in: "1705736792d82aa2f2d3caf1c07c53f4", want: 1705736792, wantOK: true},
		{in: "abc42def7", want: 42, wantOK: true},
		{in: "abcdef", wantOK: false},
		{in: "", wantOK: false},
		{in: "99999999999999999999999", wantOK: false, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok, err := ExtractID(tt.in)
			if tt.wantErr {
				assert.True(t, core.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_IDOverflow(t *testing.T) {
	const data = `Uniq Id,Product Id,Product Rating,Product Name
u1,p123456789012345678901234,5,Long Id
u1,nodigits,4,No Digits
u2,p7,3,Short Id
`
	ds, err := Read(strings.NewReader(data), Options{KeepRawTags: true})
	require.NoError(t, err)
	require.Len(t, ds.Items, 3)
	assert.Equal(t, "Long Id", ds.Items[0].Name)
	assert.Equal(t, []bool{false, true, true}, ds.HasUser)

	obs := ds.Observations()
	require.Len(t, obs, 2)
	assert.Equal(t, core.RatingObservation{UserID: 1, ProdID: 0, Rating: 4}, obs[0])
	assert.Equal(t, core.RatingObservation{UserID: 2, ProdID: 7, Rating: 3}, obs[1])
}
