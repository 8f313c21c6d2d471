package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

const slidesPrefix = "slides"

type DeckUsecase struct {
	documents ports.DocumentRepository
	workflows ports.WorkflowRepository
	titles    ports.TitleRepository
	decks     ports.SlideDeckRepository
	storage   ports.ObjectStorage
	ml        ports.MLGateway
	logger    *slog.Logger
}

func NewDeckUsecase(
	documents ports.DocumentRepository,
	workflows ports.WorkflowRepository,
	titles ports.TitleRepository,
	decks ports.SlideDeckRepository,
	storage ports.ObjectStorage,
	ml ports.MLGateway,
	logger *slog.Logger,
) *DeckUsecase {
	return &DeckUsecase{
		documents: documents,
		workflows: workflows,
		titles:    titles,
		decks:     decks,
		storage:   storage,
		ml:        ml,
		logger:    logger,
	}
}

// Generate asks the ML service for a deck built from the saved title indexes.
// The generated deck is returned to the caller either way; persisting the
// preview copy is best effort and a failure there only loses the preview.
func (u *DeckUsecase) Generate(ctx context.Context, userID, documentID string) (*domain.SlideDeck, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if !state.CanGenerateSlides() {
		return nil, domain.WrapError(domain.ErrWorkflowOrder, "generate slides",
			fmt.Errorf("titles must be saved before generating, stage is %s", state.Stage))
	}

	set, err := u.titles.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	slides, err := u.ml.GenerateSlides(ctx, state.MLSessionID, set.Indexes())
	if err != nil {
		return nil, err
	}

	deck := &domain.SlideDeck{
		DocumentID: doc.ID,
		Slides:     slides,
		UpdatedAt:  time.Now().UTC(),
	}
	if contentPath, err := u.persistDeck(ctx, deck); err != nil {
		u.logger.Warn("deck_persist_failed", "document_id", doc.ID, "error", err)
	} else {
		deck.ContentPath = contentPath
	}

	state.Stage = domain.StageSlidesGenerated
	state.UpdatedAt = deck.UpdatedAt
	if err := u.workflows.Save(ctx, state); err != nil {
		return nil, err
	}

	u.logger.Info("slides_generated", "document_id", doc.ID, "slide_count", len(slides))
	return deck, nil
}

func (u *DeckUsecase) Get(ctx context.Context, userID, documentID string) (*domain.SlideDeck, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	contentPath, err := u.decks.GetPath(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	file, err := u.storage.Open(ctx, contentPath)
	if err != nil {
		return nil, fmt.Errorf("open deck file: %w", err)
	}
	defer file.Close()

	deck := &domain.SlideDeck{DocumentID: doc.ID, ContentPath: contentPath}
	if err := json.NewDecoder(file).Decode(&deck.Slides); err != nil {
		return nil, fmt.Errorf("decode deck file: %w", err)
	}
	return deck, nil
}

// Save replaces the stored deck with the caller's edited slides.
func (u *DeckUsecase) Save(ctx context.Context, userID, documentID string, slides []domain.Slide) (*domain.SlideDeck, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if !state.Stage.AtLeast(domain.StageSlidesGenerated) {
		return nil, domain.WrapError(domain.ErrWorkflowOrder, "save slides",
			fmt.Errorf("no deck has been generated, stage is %s", state.Stage))
	}
	if len(slides) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save slides", fmt.Errorf("slide list is empty"))
	}
	for i, slide := range slides {
		if slide.Title == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "save slides", fmt.Errorf("slide %d has no title", i))
		}
	}

	deck := &domain.SlideDeck{
		DocumentID: doc.ID,
		Slides:     slides,
		UpdatedAt:  time.Now().UTC(),
	}
	contentPath, err := u.persistDeck(ctx, deck)
	if err != nil {
		return nil, err
	}
	deck.ContentPath = contentPath

	u.logger.Info("slides_saved", "document_id", doc.ID, "slide_count", len(slides))
	return deck, nil
}

// persistDeck writes the slides JSON to storage, repoints the deck row and
// removes the file the row pointed at before.
func (u *DeckUsecase) persistDeck(ctx context.Context, deck *domain.SlideDeck) (string, error) {
	payload, err := json.Marshal(deck.Slides)
	if err != nil {
		return "", fmt.Errorf("marshal deck: %w", err)
	}

	contentPath := path.Join(slidesPrefix, fmt.Sprintf("%s_%d.json", deck.DocumentID, deck.UpdatedAt.UnixNano()))
	if err := u.storage.Save(ctx, contentPath, bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("store deck file: %w", err)
	}

	previous, err := u.decks.Replace(ctx, deck.DocumentID, contentPath)
	if err != nil {
		return "", err
	}
	if previous != "" {
		if err := u.storage.Delete(ctx, previous); err != nil {
			u.logger.Warn("stale_deck_file_not_removed", "path", previous, "error", err)
		}
	}
	return contentPath, nil
}
