package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/eval/dataset"
	"github.com/wildmint-labs/wildmint/internal/eval/metrics"
	"github.com/wildmint-labs/wildmint/internal/eval/results"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

type parseFunc func(string) models.ClassificationResult

type runOptions struct {
	datasetPath string
	outputDir   string
	sampleSize  int
	concurrency int
}

// NewRunCmd creates the eval run command. It classifies a labelled dataset and
// never mints.
func NewRunCmd() *cobra.Command {
	var opts runOptions
	var provider, model string
	var temperature float64
	var structured bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the classifier against a labelled sighting dataset",
		Long: `Classify every image of a labelled dataset and score the answers.

The dataset is a Parquet or JSONL file with the columns id, image_path,
expected_species and expect_animal. Image paths are relative to the dataset
file. Animal detection precision matters most: a false positive would mint an
NFT for a photo without an animal.`,
		Example: `  # Evaluate 20 images with Gemini
  wildmint eval run --dataset ./sightings.parquet --sample 20

  # Evaluate everything with a local Ollama model
  wildmint eval run --dataset ./sightings.jsonl --provider ollama --sample -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", opts.datasetPath)
			}
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}

			cfg := config.Load().Classifier
			if cmd.Flags().Changed("provider") {
				cfg.Provider = provider
				cfg.Model = config.DefaultModel(provider)
			}
			if model != "" {
				cfg.Model = model
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = temperature
			}
			if cmd.Flags().Changed("structured") {
				cfg.Structured = structured
			}

			classifier, err := classification.NewClassifier(cfg)
			if err != nil {
				return err
			}

			return executeRun(cmd.Context(), cmd.OutOrStdout(), opts, cfg, classifier)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to the labelled dataset (.parquet or .jsonl)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "evals", "Directory for the YAML result file")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 2, "Concurrent classifier requests")
	cmd.Flags().StringVar(&provider, "provider", "gemini", "Classifier provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.1, "Sampling temperature")
	cmd.Flags().BoolVar(&structured, "structured", false, "Ask the provider for a JSON answer")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeRun(ctx context.Context, out io.Writer, opts runOptions, cfg config.Classifier, classifier providers.Classifier) error {
	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "provider", cfg.Provider, "model", cfg.Model)

	records, err := dataset.NewLoader(opts.datasetPath).LoadSample(opts.sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "items", len(records))

	evaluations := evaluate(ctx, classifier, classification.Parser(cfg.Structured), records, opts.datasetPath, opts.concurrency)

	agg := metrics.AggregateEvaluationResults(evaluations, cfg.Provider, cfg.Model)
	agg.PrintSummary(out)

	path, err := results.SaveToYAML(opts.outputDir, results.EvalConfig{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Prompt:      providers.UserPrompt,
		Instruction: providers.Config{Structured: cfg.Structured}.Instruction(),
		Temperature: cfg.Temperature,
		Structured:  cfg.Structured,
		DatasetPath: opts.datasetPath,
		SampleSize:  len(records),
	}, agg)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Fprintf(out, "\nResults saved to: %s\n", path)
	return nil
}

// evaluate classifies the records with at most concurrency requests in
// flight. Results keep the dataset order.
func evaluate(ctx context.Context, classifier providers.Classifier, parse parseFunc, records []dataset.SightingRecord, datasetPath string, concurrency int) []metrics.EvaluationResult {
	type indexed struct {
		idx    int
		result metrics.EvaluationResult
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan indexed, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.SightingRecord) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			slog.Info("Processing item", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			resultsChan <- indexed{idx: idx, result: processItem(ctx, classifier, parse, record, datasetPath)}
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	collected := make([]indexed, 0, len(records))
	for r := range resultsChan {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })

	out := make([]metrics.EvaluationResult, len(collected))
	for i, r := range collected {
		out[i] = r.result
	}
	return out
}

func processItem(ctx context.Context, classifier providers.Classifier, parse parseFunc, record dataset.SightingRecord, datasetPath string) (result metrics.EvaluationResult) {
	start := time.Now()
	result = metrics.EvaluationResult{
		ID:              record.ID,
		ImagePath:       record.ImagePath,
		ExpectedSpecies: record.ExpectedSpecies,
		ExpectAnimal:    record.ExpectAnimal,
	}
	defer func() { result.ProcessingTime = time.Since(start) }()

	path := record.ResolveImagePath(datasetPath)
	if path == "" {
		result.Error = "no image path"
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	img, err := capture.Import(data, "", start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	raw, err := classifier.Classify(ctx, img)
	if err != nil {
		result.Error = fmt.Sprintf("failed to classify: %v", err)
		return result
	}

	parsed := parse(raw)
	result.RawResponse = raw
	result.PredictedAnimal = parsed.IsAnimal

	if record.ExpectAnimal && record.ExpectedSpecies != "" && parsed.IsAnimal {
		match := metrics.CompareSpecies(record.ExpectedSpecies, parsed.Species)
		result.Species = &match
	}
	return result
}
