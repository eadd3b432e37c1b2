package dataset

import "path/filepath"

// SightingRecord is one labelled image of the evaluation dataset
type SightingRecord struct {
	ID        string `json:"id" parquet:"id"`
	ImagePath string `json:"image_path" parquet:"image_path"` // relative paths resolve against the dataset file
	// ExpectedSpecies is the reference label; empty when no animal is present
	ExpectedSpecies string `json:"expected_species" parquet:"expected_species"`
	ExpectAnimal    bool   `json:"expect_animal" parquet:"expect_animal"`
}

// ResolveImagePath returns the image path relative to the dataset's directory
func (r SightingRecord) ResolveImagePath(datasetPath string) string {
	if r.ImagePath == "" || filepath.IsAbs(r.ImagePath) {
		return r.ImagePath
	}
	return filepath.Join(filepath.Dir(datasetPath), r.ImagePath)
}
