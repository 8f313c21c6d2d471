package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

const pptxPrefix = "pptx"

type ExportUsecase struct {
	documents ports.DocumentRepository
	workflows ports.WorkflowRepository
	artifacts ports.ArtifactRepository
	deckRead  ports.DeckService
	storage   ports.ObjectStorage
	ml        ports.MLGateway
	logger    *slog.Logger
}

func NewExportUsecase(
	documents ports.DocumentRepository,
	workflows ports.WorkflowRepository,
	artifacts ports.ArtifactRepository,
	deckRead ports.DeckService,
	storage ports.ObjectStorage,
	ml ports.MLGateway,
	logger *slog.Logger,
) *ExportUsecase {
	return &ExportUsecase{
		documents: documents,
		workflows: workflows,
		artifacts: artifacts,
		deckRead:  deckRead,
		storage:   storage,
		ml:        ml,
		logger:    logger,
	}
}

// Generate renders the slides into PPTX with the chosen pipeline and records
// the result. Artifacts accumulate: a second export never overwrites the
// first. When the caller sends no slides the stored deck is used.
func (u *ExportUsecase) Generate(ctx context.Context, userID, documentID string, variant domain.PPTXVariant, slides []domain.Slide) (*ports.ExportResult, error) {
	if !variant.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export pptx", fmt.Errorf("unknown variant %q", variant))
	}

	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if !state.CanExportPPTX() {
		return nil, domain.WrapError(domain.ErrWorkflowOrder, "export pptx",
			fmt.Errorf("slides must be generated before exporting, stage is %s", state.Stage))
	}

	if len(slides) == 0 {
		deck, err := u.deckRead.Get(ctx, userID, documentID)
		if err != nil {
			return nil, err
		}
		slides = deck.Slides
	}

	data, err := u.ml.GeneratePPTX(ctx, state.MLSessionID, slides, variant)
	if err != nil {
		return nil, err
	}

	// The artifact id in the filename keeps every accumulated export pointing
	// at its own file, even for back-to-back exports of one document.
	id := uuid.NewString()
	artifact := domain.PPTXArtifact{
		ID:         id,
		DocumentID: doc.ID,
		Variant:    variant,
		Filename:   fmt.Sprintf("%s_pptx_%s_%s.pptx", variant, doc.ID, id),
		CreatedAt:  time.Now().UTC(),
	}
	if err := u.storage.Save(ctx, path.Join(pptxPrefix, artifact.Filename), bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store pptx: %w", err)
	}
	if err := u.artifacts.Create(ctx, &artifact); err != nil {
		return nil, err
	}

	u.logger.Info("pptx_exported",
		"document_id", doc.ID,
		"artifact_id", artifact.ID,
		"variant", string(variant),
		"size_bytes", len(data),
	)
	return &ports.ExportResult{Artifact: artifact, Data: data}, nil
}

func (u *ExportUsecase) List(ctx context.Context, userID, documentID string, variant domain.PPTXVariant) ([]domain.PPTXArtifact, error) {
	if variant != "" && !variant.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list exports", fmt.Errorf("unknown variant %q", variant))
	}
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	return u.artifacts.ListOwned(ctx, doc.ID, userID, variant)
}

// Download re-serves a previously exported artifact from storage.
func (u *ExportUsecase) Download(ctx context.Context, userID, artifactID string, variant domain.PPTXVariant) (*ports.ExportResult, error) {
	artifact, err := u.artifacts.GetOwned(ctx, artifactID, userID, variant)
	if err != nil {
		return nil, err
	}

	file, err := u.storage.Open(ctx, path.Join(pptxPrefix, artifact.Filename))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read pptx: %w", err)
	}
	return &ports.ExportResult{Artifact: *artifact, Data: data}, nil
}
