package mint

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wildmint-labs/wildmint/internal/models"
)

// Input is everything the pipeline knows when it asks for a mint
type Input struct {
	Image  models.CapturedImage
	Result models.ClassificationResult
	Owner  string
}

// Minter mints a sighting. Every failure is a models.ErrMintService, except a
// non-animal result which is models.ErrNonAnimal.
type Minter interface {
	Mint(ctx context.Context, in Input) (models.MintResult, error)
}

// Submitter sends a built request to the provider
type Submitter interface {
	Submit(ctx context.Context, request models.MintRequest) (models.MintResult, error)
}

// Service mints in-process: build the request, then submit it
type Service struct {
	builder   *Builder
	submitter Submitter
}

// NewService creates a Service
func NewService(builder *Builder, submitter Submitter) *Service {
	return &Service{
		builder:   builder,
		submitter: submitter,
	}
}

// Mint builds and submits the request for an animal sighting
func (s *Service) Mint(ctx context.Context, in Input) (models.MintResult, error) {
	var imageRef string
	if s.builder.UseCapturedImage && len(in.Image.Data) > 0 {
		imageRef = in.Image.DataURL()
	}

	request, err := s.builder.BuildRequest(in.Result, in.Owner, in.Image.CapturedAt, imageRef)
	if err != nil {
		if errors.Is(err, ErrInvalidRecipient) {
			return models.MintResult{}, models.MintServiceError(err.Error(), err)
		}
		return models.MintResult{}, err
	}

	slog.Info("Minting NFT", "recipient", request.Recipient, "species", in.Result.Species)

	result, err := s.submitter.Submit(ctx, request)
	if err != nil {
		slog.Error("Error minting NFT", "recipient", request.Recipient, "error", err)
		return models.MintResult{}, err
	}

	slog.Info("Minted NFT", "recipient", request.Recipient, "explorer_url", result.ExplorerURL)
	return result, nil
}
