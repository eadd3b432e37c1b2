package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []SightingRecord{
	{ID: "fox-1", ImagePath: "images/fox.jpg", ExpectedSpecies: "Red Fox", ExpectAnimal: true},
	{ID: "chair-1", ImagePath: "images/chair.jpg", ExpectAnimal: false},
	{ID: "owl-1", ImagePath: "/data/owl.png", ExpectedSpecies: "Barn Owl", ExpectAnimal: true},
}

func TestNewLoader(t *testing.T) {
	path := "./test.parquet"
	loader := NewLoader(path)

	assert.Equal(t, path, loader.Path())
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sightings.parquet")
	require.NoError(t, parquet.WriteFile(path, sample))

	records, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, sample, records)
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sightings.jsonl")
	content := `{"id":"fox-1","image_path":"images/fox.jpg","expected_species":"Red Fox","expect_animal":true}

{"image_path":"images/chair.jpg","expect_animal":false}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := NewLoader(path).Load()

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fox-1", records[0].ID)
	assert.True(t, records[0].ExpectAnimal)
	assert.Equal(t, "row-2", records[1].ID, "missing ids are numbered")
}

func TestLoadErrors(t *testing.T) {
	_, err := NewLoader("dataset.csv").Load()
	assert.ErrorContains(t, err, "unsupported file format")

	_, err = NewLoader(filepath.Join(t.TempDir(), "missing.jsonl")).Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0644))
	_, err = NewLoader(path).Load()
	assert.ErrorContains(t, err, "line 1")
}

func TestLoadSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sightings.parquet")
	require.NoError(t, parquet.WriteFile(path, sample))

	records, err := NewLoader(path).LoadSample(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = NewLoader(path).LoadSample(-1)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestResolveImagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "images", "fox.jpg"), sample[0].ResolveImagePath("data/sightings.parquet"))
	assert.Equal(t, "/data/owl.png", sample[2].ResolveImagePath("data/sightings.parquet"))
}
