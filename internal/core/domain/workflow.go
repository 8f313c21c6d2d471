package domain

import "time"

// Stage is the client-visible position of a document in the presentation
// workflow. Transitions are forward-only; Clear is the only reset.
type Stage string

const (
	StageUploaded        Stage = "uploaded"
	StageTitlesExtracted Stage = "titles_extracted"
	StageTitlesSaved     Stage = "titles_saved"
	StageSlidesGenerated Stage = "slides_generated"
)

var stageRank = map[Stage]int{
	StageUploaded:        0,
	StageTitlesExtracted: 1,
	StageTitlesSaved:     2,
	StageSlidesGenerated: 3,
}

func (s Stage) Valid() bool {
	_, ok := stageRank[s]
	return ok
}

// AtLeast reports whether the stage has reached other in workflow order.
func (s Stage) AtLeast(other Stage) bool {
	return stageRank[s] >= stageRank[other]
}

// WorkflowState is the explicit per-document workflow context. It replaces any
// shared mutable session slot: the ML session handle and the title index
// counter live here, keyed by document id.
type WorkflowState struct {
	DocumentID     string    `json:"document_id"`
	Stage          Stage     `json:"stage"`
	MLSessionID    string    `json:"ml_session_id,omitempty"`
	TitlesSaved    bool      `json:"titles_saved"`
	NextTitleIndex int       `json:"next_title_index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewWorkflowState(documentID string, now time.Time) *WorkflowState {
	return &WorkflowState{
		DocumentID: documentID,
		Stage:      StageUploaded,
		UpdatedAt:  now,
	}
}

// CanExtractTitles permits the initial extraction and retries of a failed one.
// Once titles are saved the index counter is live and a re-extraction would
// invalidate it; the user has to Clear first.
func (w *WorkflowState) CanExtractTitles() bool {
	return w.Stage == StageUploaded || w.Stage == StageTitlesExtracted
}

func (w *WorkflowState) CanSaveTitles() bool {
	return w.Stage.AtLeast(StageTitlesExtracted)
}

// CanGenerateSlides requires an explicit save: edits that were never saved
// must not influence generation.
func (w *WorkflowState) CanGenerateSlides() bool {
	return w.TitlesSaved && w.MLSessionID != ""
}

func (w *WorkflowState) CanExportPPTX() bool {
	return w.Stage.AtLeast(StageSlidesGenerated) && w.MLSessionID != ""
}

// Reset returns the workflow to the post-upload state, discarding the ML
// session handle and the title counter. The document itself stays.
func (w *WorkflowState) Reset(now time.Time) {
	w.Stage = StageUploaded
	w.MLSessionID = ""
	w.TitlesSaved = false
	w.NextTitleIndex = 0
	w.UpdatedAt = now
}
