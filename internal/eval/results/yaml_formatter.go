package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wildmint-labs/wildmint/internal/eval/metrics"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Prompt      string  `yaml:"prompt"`
	Instruction string  `yaml:"instruction"`
	Temperature float64 `yaml:"temperature"`
	Structured  bool    `yaml:"structured"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalSummary is the aggregate section of the eval YAML
type EvalSummary struct {
	Total             int               `yaml:"total"`
	Failed            int               `yaml:"failed"`
	Detection         metrics.Detection `yaml:"detection"`
	DetectionAccuracy float64           `yaml:"detectionaccuracy"`
	Precision         float64           `yaml:"precision"`
	Recall            float64           `yaml:"recall"`
	SpeciesScore      float64           `yaml:"speciesscore"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier       string                `yaml:"identifier"`
	ImagePath        string                `yaml:"imagepath"`
	ExpectedSpecies  string                `yaml:"expectedspecies,omitempty"`
	ExpectAnimal     bool                  `yaml:"expectanimal"`
	PredictedAnimal  bool                  `yaml:"predictedanimal"`
	ProviderResponse string                `yaml:"providerresponse"`
	Species          *metrics.SpeciesMatch `yaml:"species,omitempty"`
	ProcessingMillis int64                 `yaml:"processingms"`
	Error            string                `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation file
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// NewEvalSpec converts aggregated results into the YAML document
func NewEvalSpec(cfg EvalConfig, agg *metrics.AggregateResults) EvalSpec {
	spec := EvalSpec{
		Config: cfg,
		Summary: EvalSummary{
			Total:             agg.TotalRecords,
			Failed:            agg.FailureCount,
			Detection:         agg.Detection,
			DetectionAccuracy: agg.Detection.Accuracy(),
			Precision:         agg.Detection.Precision(),
			Recall:            agg.Detection.Recall(),
			SpeciesScore:      agg.SpeciesAccuracy.AverageScore,
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		spec.Results = append(spec.Results, EvalResult{
			Identifier:       r.ID,
			ImagePath:        r.ImagePath,
			ExpectedSpecies:  r.ExpectedSpecies,
			ExpectAnimal:     r.ExpectAnimal,
			PredictedAnimal:  r.PredictedAnimal,
			ProviderResponse: r.RawResponse,
			Species:          r.Species,
			ProcessingMillis: r.ProcessingTime.Milliseconds(),
			Error:            r.Error,
		})
	}
	return spec
}

// SaveToYAML writes the evaluation to <dir>/<model>-<timestamp>.yaml and returns the path
func SaveToYAML(dir string, cfg EvalConfig, agg *metrics.AggregateResults) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	spec := NewEvalSpec(cfg, agg)

	// model names like "mistral-small3.2:24b" are not safe file names everywhere
	safeModel := strings.NewReplacer("/", "_", ":", "_").Replace(cfg.Model)
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", safeModel, cfg.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}
