package providers

import (
	"context"

	"github.com/wildmint-labs/wildmint/internal/models"
)

// SystemInstruction is the fixed instruction sent with every classification
const SystemInstruction = "Return what animal specie the picture is, followed by a description of the image.\n\nOutput Format:\nAnimal: [animal specie]\nDescription: [image description]\n\nIf there is no animal, return \"No Animal\"\n\n"

// StructuredInstruction replaces SystemInstruction when JSON output is requested
const StructuredInstruction = "Return what animal specie the picture is, followed by a description of the image.\n\nRespond with ONLY a JSON object:\n{\"animal\": \"[animal specie]\", \"description\": \"[image description]\"}\n\nIf there is no animal, set \"animal\" to \"No Animal\"."

// UserPrompt accompanies the image
const UserPrompt = "Analyze this image and tell me what animal species it is, followed by a description of the image."

// Config represents the configuration for a vision provider
type Config struct {
	Model       string
	Temperature float64
	// Structured asks the provider for a JSON answer instead of the two-line format
	Structured bool
}

// Instruction returns the system instruction matching the configured output mode
func (c Config) Instruction() string {
	if c.Structured {
		return StructuredInstruction
	}
	return SystemInstruction
}

// Classifier sends one image to a vision-language model and returns its raw text answer.
// Failures are reported as models.ErrClassificationService.
type Classifier interface {
	Classify(ctx context.Context, image models.CapturedImage) (string, error)
}
