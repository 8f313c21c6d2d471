package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

type TitleUsecase struct {
	documents ports.DocumentRepository
	workflows ports.WorkflowRepository
	titles    ports.TitleRepository
	storage   ports.ObjectStorage
	ml        ports.MLGateway
	logger    *slog.Logger
}

func NewTitleUsecase(
	documents ports.DocumentRepository,
	workflows ports.WorkflowRepository,
	titles ports.TitleRepository,
	storage ports.ObjectStorage,
	ml ports.MLGateway,
	logger *slog.Logger,
) *TitleUsecase {
	return &TitleUsecase{
		documents: documents,
		workflows: workflows,
		titles:    titles,
		storage:   storage,
		ml:        ml,
		logger:    logger,
	}
}

// Extract submits the stored original to the ML service and records the
// returned session handle. The titles are returned for editing, not saved;
// saving is a separate explicit step.
func (u *TitleUsecase) Extract(ctx context.Context, userID, documentID string) (*domain.TitleExtraction, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if !state.CanExtractTitles() {
		return nil, domain.WrapError(domain.ErrWorkflowOrder, "extract titles",
			fmt.Errorf("stage %s does not allow extraction, clear the workspace first", state.Stage))
	}

	file, err := u.storage.Open(ctx, doc.StoredFilename)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer file.Close()

	extraction, err := u.ml.ExtractTitles(ctx, doc.StoredFilename, file)
	if err != nil {
		return nil, err
	}

	state.MLSessionID = extraction.SessionID
	state.Stage = domain.StageTitlesExtracted
	state.TitlesSaved = false
	state.NextTitleIndex = len(extraction.Titles)
	state.UpdatedAt = time.Now().UTC()
	if err := u.workflows.Save(ctx, state); err != nil {
		return nil, err
	}

	u.logger.Info("titles_extracted",
		"document_id", doc.ID,
		"title_count", len(extraction.Titles),
	)
	return extraction, nil
}

// Save replaces the document's title set. Entries without an index are new
// and receive the next counter value; counter values are never reused, so an
// index deleted in an earlier save stays retired.
func (u *TitleUsecase) Save(ctx context.Context, userID, documentID string, entries []domain.TitleInput) (*domain.TitleSet, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if !state.CanSaveTitles() {
		return nil, domain.WrapError(domain.ErrWorkflowOrder, "save titles",
			fmt.Errorf("titles have not been extracted for stage %s", state.Stage))
	}
	if len(entries) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save titles", fmt.Errorf("title list is empty"))
	}

	set := &domain.TitleSet{
		DocumentID: doc.ID,
		Entries:    make([]domain.TitleEntry, 0, len(entries)),
		UpdatedAt:  time.Now().UTC(),
	}
	seen := make(map[int]bool, len(entries))
	for i, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "save titles", fmt.Errorf("entry %d has an empty title", i))
		}

		index := state.NextTitleIndex
		if entry.Index != nil {
			index = *entry.Index
			if index < 0 || index >= state.NextTitleIndex {
				return nil, domain.WrapError(domain.ErrInvalidInput, "save titles", fmt.Errorf("unknown title index %d", index))
			}
		} else {
			state.NextTitleIndex++
		}
		if seen[index] {
			return nil, domain.WrapError(domain.ErrInvalidInput, "save titles", fmt.Errorf("duplicate title index %d", index))
		}
		seen[index] = true

		set.Entries = append(set.Entries, domain.TitleEntry{Index: index, Title: title})
	}

	if err := u.titles.Replace(ctx, set); err != nil {
		return nil, err
	}

	state.TitlesSaved = true
	if !state.Stage.AtLeast(domain.StageTitlesSaved) {
		state.Stage = domain.StageTitlesSaved
	}
	state.UpdatedAt = set.UpdatedAt
	if err := u.workflows.Save(ctx, state); err != nil {
		return nil, err
	}

	u.logger.Info("titles_saved", "document_id", doc.ID, "title_count", len(set.Entries))
	return set, nil
}

func (u *TitleUsecase) Get(ctx context.Context, userID, documentID string) (*domain.TitleSet, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	return u.titles.Get(ctx, doc.ID)
}
