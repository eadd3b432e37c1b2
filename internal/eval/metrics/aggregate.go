package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// EvaluationResult is the outcome of classifying one dataset record
type EvaluationResult struct {
	ID              string
	ImagePath       string
	ExpectedSpecies string
	ExpectAnimal    bool
	RawResponse     string
	PredictedAnimal bool
	Species         *SpeciesMatch // nil unless an animal was expected and predicted
	ProcessingTime  time.Duration
	Error           string // classifier or image failure
}

// Detection is the confusion matrix of animal / no-animal decisions
type Detection struct {
	TruePositives  int `yaml:"truepositives"`
	TrueNegatives  int `yaml:"truenegatives"`
	FalsePositives int `yaml:"falsepositives"`
	FalseNegatives int `yaml:"falsenegatives"`
}

func (d Detection) total() int {
	return d.TruePositives + d.TrueNegatives + d.FalsePositives + d.FalseNegatives
}

// Accuracy is the share of correct animal / no-animal decisions
func (d Detection) Accuracy() float64 {
	if d.total() == 0 {
		return 0
	}
	return float64(d.TruePositives+d.TrueNegatives) / float64(d.total())
}

// Precision is the share of predicted animals that were animals. A false
// positive here would have minted a non-animal.
func (d Detection) Precision() float64 {
	if d.TruePositives+d.FalsePositives == 0 {
		return 0
	}
	return float64(d.TruePositives) / float64(d.TruePositives+d.FalsePositives)
}

func (d Detection) Recall() float64 {
	if d.TruePositives+d.FalseNegatives == 0 {
		return 0
	}
	return float64(d.TruePositives) / float64(d.TruePositives+d.FalseNegatives)
}

// FieldStats contains statistics for species matching
type FieldStats struct {
	ExactMatches  int
	FuzzyMatches  int
	NoMatches     int
	MissingFields int
	AverageScore  float64
	Scores        []float64
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	Detection       Detection
	SpeciesAccuracy FieldStats

	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	Results []EvaluationResult

	EvaluationDate time.Time
	Provider       string
	Model          string
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:    len(results),
		Results:         results,
		EvaluationDate:  time.Now(),
		Provider:        provider,
		Model:           model,
		SpeciesAccuracy: FieldStats{Scores: []float64{}},
	}

	var successDuration time.Duration
	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		switch {
		case result.ExpectAnimal && result.PredictedAnimal:
			agg.Detection.TruePositives++
		case result.ExpectAnimal:
			agg.Detection.FalseNegatives++
		case result.PredictedAnimal:
			agg.Detection.FalsePositives++
		default:
			agg.Detection.TrueNegatives++
		}

		if result.Species != nil {
			aggregateFieldStats(&agg.SpeciesAccuracy, *result.Species)
		}
	}

	if agg.SuccessCount > 0 {
		agg.SpeciesAccuracy.AverageScore = calculateAverage(agg.SpeciesAccuracy.Scores)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	return agg
}

func aggregateFieldStats(stats *FieldStats, match SpeciesMatch) {
	stats.Scores = append(stats.Scores, match.Score)

	switch match.Method {
	case "exact":
		stats.ExactMatches++
	case "fuzzy_high", "fuzzy_medium", "substring":
		stats.FuzzyMatches++
	case "no_match":
		stats.NoMatches++
	case "actual_missing":
		stats.MissingFields++
	}
}

func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "WILDMINT CLASSIFIER EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ANIMAL DETECTION")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Accuracy:  %.2f%%\n", a.Detection.Accuracy()*100)
	fmt.Fprintf(w, "Precision: %.2f%%\n", a.Detection.Precision()*100)
	fmt.Fprintf(w, "Recall:    %.2f%%\n", a.Detection.Recall()*100)
	fmt.Fprintf(w, "TP %d / TN %d / FP %d / FN %d\n",
		a.Detection.TruePositives, a.Detection.TrueNegatives, a.Detection.FalsePositives, a.Detection.FalseNegatives)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SPECIES")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "  Average Score: %.2f%% (%.3f)\n", a.SpeciesAccuracy.AverageScore*100, a.SpeciesAccuracy.AverageScore)
	fmt.Fprintf(w, "  Exact Matches: %d\n", a.SpeciesAccuracy.ExactMatches)
	fmt.Fprintf(w, "  Fuzzy Matches: %d\n", a.SpeciesAccuracy.FuzzyMatches)
	fmt.Fprintf(w, "  No Matches: %d\n", a.SpeciesAccuracy.NoMatches)
	fmt.Fprintf(w, "  Missing: %d\n", a.SpeciesAccuracy.MissingFields)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
