package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wildmint-labs/wildmint/internal/eval/metrics"
)

func TestSaveToYAML(t *testing.T) {
	match := metrics.CompareSpecies("Red Fox", "Red Fox")
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{
		{ID: "fox-1", ImagePath: "images/fox.jpg", ExpectedSpecies: "Red Fox", ExpectAnimal: true, PredictedAnimal: true,
			RawResponse: "Animal: Red Fox\nDescription: A fox", Species: &match, ProcessingTime: 1500 * time.Millisecond},
		{ID: "chair-1", ImagePath: "images/chair.jpg", Error: "image not found"},
	}, "ollama", "mistral-small3.2:24b")

	dir := filepath.Join(t.TempDir(), "evals")
	path, err := SaveToYAML(dir, EvalConfig{
		Provider:  "ollama",
		Model:     "mistral-small3.2:24b",
		Timestamp: "2024-05-01_10-00-00",
	}, agg)
	require.NoError(t, err)

	assert.Equal(t, "mistral-small3.2_24b-2024-05-01_10-00-00.yaml", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var spec EvalSpec
	require.NoError(t, yaml.Unmarshal(data, &spec))
	assert.Equal(t, "ollama", spec.Config.Provider)
	assert.Equal(t, 2, spec.Summary.Total)
	assert.Equal(t, 1, spec.Summary.Failed)
	require.Len(t, spec.Results, 2)
	assert.Equal(t, "fox-1", spec.Results[0].Identifier)
	assert.Equal(t, int64(1500), spec.Results[0].ProcessingMillis)
	require.NotNil(t, spec.Results[0].Species)
	assert.Equal(t, "exact", spec.Results[0].Species.Method)
	assert.Equal(t, "image not found", spec.Results[1].Error)
}
