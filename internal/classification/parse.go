// Package classification turns the classifier's free text into a structured
// sighting result.
//
// The classifier is asked to answer in two lines:
//
//	Animal: <species>
//	Description: <description>
//
// or with "No Animal". Parse is tolerant: it never fails and degrades to the
// "Unknown" species, which is never minted. ParseStructured additionally
// accepts the JSON answer requested in structured mode.
package classification

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/models"
)

const (
	// UnknownSpecies is reported when no species line could be found
	UnknownSpecies = "Unknown"
	// NoAnimal is the classifier's answer for photos without an animal
	NoAnimal = "No Animal"

	animalPrefix      = "Animal:"
	descriptionPrefix = "Description:"
)

// Parse extracts species and description from the two-line classifier answer
func Parse(raw string) models.ClassificationResult {
	species, description := parseLines(raw)
	return newResult(raw, species, description)
}

// ParseStructured reads the JSON answer of structured mode, falling back to
// the two-line format when the model ignored the requested format
func ParseStructured(raw string) models.ClassificationResult {
	species, description, ok := parseJSON(raw)
	if !ok {
		species, description = parseLines(raw)
	}
	return newResult(raw, species, description)
}

// Parser returns the parse function matching the classifier's output mode
func Parser(structured bool) func(string) models.ClassificationResult {
	if structured {
		return ParseStructured
	}
	return Parse
}

func newResult(raw, species, description string) models.ClassificationResult {
	if species == "" {
		species = UnknownSpecies
	}

	return models.ClassificationResult{
		Species:     species,
		Description: description,
		IsAnimal:    IsAnimalSpecies(species) && !strings.Contains(raw, NoAnimal),
		Raw:         raw,
	}
}

// IsAnimalSpecies reports whether a species value may be minted
func IsAnimalSpecies(species string) bool {
	species = strings.TrimSpace(species)
	return species != "" && species != UnknownSpecies && species != NoAnimal
}

// parseLines reads the two-line format. The first matching line of each kind
// is final, even when its remainder is empty.
func parseLines(raw string) (species, description string) {
	var haveSpecies, haveDescription bool
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case !haveSpecies && strings.HasPrefix(line, animalPrefix):
			species = strings.TrimSpace(line[len(animalPrefix):])
			haveSpecies = true
		case !haveDescription && strings.HasPrefix(line, descriptionPrefix):
			description = strings.TrimSpace(line[len(descriptionPrefix):])
			haveDescription = true
		}
	}
	return species, description
}

// parseJSON reads the structured answer, optionally wrapped in a markdown fence
func parseJSON(raw string) (species, description string, ok bool) {
	response := strings.TrimSpace(raw)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "{") {
		return "", "", false
	}

	var result struct {
		Animal      *string `json:"animal"`
		Description string  `json:"description"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		slog.Debug("Classifier answer looked like JSON but did not parse, using line format", "error", err)
		return "", "", false
	}
	if result.Animal == nil {
		return "", "", false
	}

	return strings.TrimSpace(*result.Animal), strings.TrimSpace(result.Description), true
}
