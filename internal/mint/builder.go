package mint

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gagliardetto/solana-go"

	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/models"
)

// ISO8601Millis matches JavaScript's Date.toISOString output
const ISO8601Millis = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidRecipient is returned for an empty or malformed owner address
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Builder maps a sighting to the minting provider payload
type Builder struct {
	Chain            string
	ImageURL         string
	UseCapturedImage bool
	Latitude         string
	Longitude        string

	now func() time.Time
}

// NewBuilder creates a builder from the mint configuration
func NewBuilder(cfg config.Mint) *Builder {
	return &Builder{
		Chain:            cfg.Chain,
		ImageURL:         cfg.ImageURL,
		UseCapturedImage: cfg.UseCapturedImage,
		Latitude:         cfg.Latitude,
		Longitude:        cfg.Longitude,
		now:              time.Now,
	}
}

// RecipientAddress qualifies the owner's public address with the chain: "<chain>:<address>"
func (b *Builder) RecipientAddress(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", fmt.Errorf("%w: owner public key is empty", ErrInvalidRecipient)
	}
	if b.Chain == "solana" {
		if _, err := solana.PublicKeyFromBase58(owner); err != nil {
			return "", fmt.Errorf("%w: %q is not a solana public key: %v", ErrInvalidRecipient, owner, err)
		}
	}
	return b.Chain + ":" + owner, nil
}

// BuildRequest builds the provider payload for an animal sighting. imageRef is
// only used when captured-image mode is enabled; otherwise the placeholder
// image is sent.
func (b *Builder) BuildRequest(result models.ClassificationResult, owner string, capturedAt time.Time, imageRef string) (models.MintRequest, error) {
	if !result.IsAnimal {
		return models.MintRequest{}, models.NonAnimalError(result.Description)
	}

	species := sanitize(result.Species)
	if species == "" {
		return models.MintRequest{}, models.NonAnimalError(result.Description)
	}

	recipient, err := b.RecipientAddress(owner)
	if err != nil {
		return models.MintRequest{}, err
	}

	if capturedAt.IsZero() {
		capturedAt = b.now()
	}

	image := b.ImageURL
	if b.UseCapturedImage && imageRef != "" {
		image = imageRef
	}

	return models.MintRequest{
		Recipient: recipient,
		Metadata: models.NFTMetadata{
			Name:        species + " NFT",
			Image:       image,
			Description: sanitize(result.Description),
			Attributes: []models.Attribute{
				{TraitType: "Species", Value: species},
				{TraitType: "Latitude", Value: b.Latitude},
				{TraitType: "Longitude", Value: b.Longitude},
				{TraitType: "Time Captured", Value: capturedAt.UTC().Format(ISO8601Millis)},
			},
		},
	}, nil
}

// sanitize trims the text and drops control characters; species are otherwise free text
func sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s))
}
