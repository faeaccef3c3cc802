package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/recall"
	"github.com/rushteam/hybridrec/recommend"
)

const catalogCSV = `Uniq Id,Product Id,Product Rating,Product Reviews Count,Product Category,Product Brand,Product Name,Product Image Url,Product Description,Product Tags
u1,p10,5,3,Beauty > Nail,OPI,Red Polish,http://img/10,red nail polish,
u2,p10,4,3,Beauty > Nail,OPI,Red Polish,http://img/10,red nail polish,
u2,p11,3,1,Beauty > Nail,OPI,Pink Polish,http://img/11,pink nail polish,
u3,p12,2,7,Home > Lamp,Acme,Desk Lamp,http://img/12,bright desk lamp,
`

func writeCatalog(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCommand.SetOut(&out)
	rootCommand.SetErr(&out)
	rootCommand.SetArgs(args)
	err := rootCommand.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	catalog := writeCatalog(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "top rated",
			args:     []string{"top-rated", "--catalog", catalog, "-n", "2"},
			contains: []string{"Red Polish", "Pink Polish"},
		},
		{
			name:     "content",
			args:     []string{"content", "--catalog", catalog, "--item", "Red Polish"},
			contains: []string{"Pink Polish"},
		},
		{
			name:     "content miss",
			args:     []string{"content", "--catalog", catalog, "--item", "Unknown"},
			contains: []string{"item not found"},
		},
		{
			name:     "collaborative",
			args:     []string{"collaborative", "--catalog", catalog, "--user", "1"},
			contains: []string{"Pink Polish"},
		},
		{
			name:     "stats",
			args:     []string{"stats", "--catalog", catalog},
			contains: []string{"4", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestCommands_MissingCatalog(t *testing.T) {
	_, err := execute(t, "stats", "--catalog", "")
	assert.True(t, core.IsInvalidInput(err))
}

func TestCommands_UnsupportedCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  type: etcd\n"), 0o644))

	_, err := execute(t, "top-rated", "-c", path, "--catalog", writeCatalog(t))
	assert.ErrorIs(t, err, core.ErrStoreNotSupported)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderRated(&buf, []recall.RatedItem{
		{Name: "Red Polish", Rating: 4.5, ReviewCount: 3, Brand: "opi"},
	}))
	assert.Contains(t, buf.String(), "Red Polish")
	assert.Contains(t, buf.String(), "4.50")

	buf.Reset()
	require.NoError(t, renderResult(&buf, &recommend.Result{Miss: true}))
	assert.Contains(t, buf.String(), "item not found")
}
