package models

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// CapturedImage is a single still frame, either read from a camera or imported from a file
type CapturedImage struct {
	Data       []byte    `json:"-"`
	MIMEType   string    `json:"mime_type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"captured_at"`
}

// DataURL renders the image as a data URL
func (c CapturedImage) DataURL() string {
	return "data:" + c.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// ImageSummary is what a session exposes about its image without the pixel data
type ImageSummary struct {
	MIMEType   string    `json:"mime_type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	SizeBytes  int       `json:"size_bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

// Summary returns the metadata of the image
func (c CapturedImage) Summary() ImageSummary {
	return ImageSummary{
		MIMEType:   c.MIMEType,
		Width:      c.Width,
		Height:     c.Height,
		SizeBytes:  len(c.Data),
		CapturedAt: c.CapturedAt,
	}
}

// ClassificationResult is the structured reading of the classifier's answer
type ClassificationResult struct {
	Species     string `json:"species"`
	Description string `json:"description"`
	IsAnimal    bool   `json:"is_animal"`
	Raw         string `json:"raw,omitempty"`
}

// Attribute is one NFT metadata trait
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTMetadata is the metadata block sent to the minting provider
type NFTMetadata struct {
	Name        string      `json:"name"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes"`
}

// MintRequest is the minting provider payload
type MintRequest struct {
	Recipient string      `json:"recipient"` // "<chain>:<address>"
	Metadata  NFTMetadata `json:"metadata"`
}

// MintResult holds the provider response, forwarded as received
type MintResult struct {
	Raw         json.RawMessage `json:"raw,omitempty"`
	ExplorerURL string          `json:"explorer_url,omitempty"`
}

// SessionView is the JSON representation of a pipeline session
type SessionView struct {
	ID             string                `json:"id"`
	Owner          string                `json:"owner"`
	State          string                `json:"state"`
	Image          *ImageSummary         `json:"image,omitempty"`
	Classification *ClassificationResult `json:"classification,omitempty"`
	Mint           *MintResult           `json:"mint,omitempty"`
	Error          string                `json:"error,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
