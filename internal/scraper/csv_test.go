package scraper

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/hansik/backend/internal/loader"
)

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.csv")
	first := &Recipe{
		Name:         "Kimchi Jjigae",
		Ingredients:  []string{"kimchi", "pork"},
		Instructions: []string{"Fry", "Simmer"},
		URL:          "https://example.com/760",
	}
	second := &Recipe{Name: "Bulgogi", Ingredients: []string{"beef"}, URL: "https://example.com/761"}

	require.NoError(t, AppendCSV(path, first))
	require.NoError(t, AppendCSV(path, second))

	docs, err := loader.New(nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Kimchi Jjigae", docs[0].Metadata["name"])
	assert.Equal(t, "kimchi, pork", docs[0].Metadata["ingredients"])
	assert.Equal(t, "Fry\nSimmer", docs[0].Metadata["instructions"])
	assert.Equal(t, "Bulgogi", docs[1].Metadata["name"])
	assert.Equal(t, "https://example.com/761", docs[1].Metadata["url"])
}

func TestAppendCSVBadPath(t *testing.T) {
	err := AppendCSV(filepath.Join(t.TempDir(), "missing", "recipes.csv"), &Recipe{Name: "x"})
	assert.Error(t, err)
}
