package domain

import "time"

// Slide is one generated slide as returned by the ML service. Fields beyond
// title/points are optional and passed through untouched.
type Slide struct {
	Title   string   `json:"title"`
	Points  []string `json:"points,omitempty"`
	Content string   `json:"content,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	Images  []string `json:"images,omitempty"`
}

// SlideDeck is the latest deck for a document. The slides themselves live in
// a JSON file on disk; the row only points at it.
type SlideDeck struct {
	DocumentID  string    `json:"document_id"`
	Slides      []Slide   `json:"slides"`
	ContentPath string    `json:"content_path,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PPTXVariant selects the remote generation pipeline.
type PPTXVariant string

const (
	VariantDefault PPTXVariant = "default"
	VariantGA      PPTXVariant = "ga"
)

func (v PPTXVariant) Valid() bool {
	return v == VariantDefault || v == VariantGA
}

// PPTXArtifact records one exported binary. Artifacts accumulate; repeated
// exports for the same deck each produce a new row.
type PPTXArtifact struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"document_id"`
	Variant    PPTXVariant `json:"variant"`
	Filename   string      `json:"filename"`
	CreatedAt  time.Time   `json:"created_at"`
}
