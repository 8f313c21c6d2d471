package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/slidespace/backend/internal/core/ports"
)

type WorkspaceUsecase struct {
	documents ports.DocumentRepository
	workflows ports.WorkflowRepository
	queue     ports.EventQueue
	logger    *slog.Logger
}

func NewWorkspaceUsecase(
	documents ports.DocumentRepository,
	workflows ports.WorkflowRepository,
	queue ports.EventQueue,
	logger *slog.Logger,
) *WorkspaceUsecase {
	return &WorkspaceUsecase{
		documents: documents,
		workflows: workflows,
		queue:     queue,
		logger:    logger,
	}
}

// Clear resets the workflow to the post-upload state and schedules the removal
// of saved titles and deck files. The original upload and exported artifacts
// stay. A lost cleanup event leaves only rows a later save would overwrite
// anyway, so a publish failure is logged and not surfaced.
func (u *WorkspaceUsecase) Clear(ctx context.Context, userID, documentID string) error {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return err
	}

	state.Reset(time.Now().UTC())
	if err := u.workflows.Save(ctx, state); err != nil {
		return err
	}

	if err := u.queue.PublishWorkspaceCleared(ctx, doc.ID); err != nil {
		u.logger.Warn("cleanup_event_not_published", "document_id", doc.ID, "error", err)
	}

	u.logger.Info("workspace_cleared", "document_id", doc.ID, "user_id", userID)
	return nil
}

// Cleaner is the worker-side half of Clear: it removes saved titles and the
// deck row plus its file for the cleared document.
type Cleaner struct {
	titles  ports.TitleRepository
	decks   ports.SlideDeckRepository
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewCleaner(
	titles ports.TitleRepository,
	decks ports.SlideDeckRepository,
	storage ports.ObjectStorage,
	logger *slog.Logger,
) *Cleaner {
	return &Cleaner{
		titles:  titles,
		decks:   decks,
		storage: storage,
		logger:  logger,
	}
}

func (c *Cleaner) CleanByDocumentID(ctx context.Context, documentID string) error {
	var errs []error

	if err := c.titles.Delete(ctx, documentID); err != nil {
		errs = append(errs, err)
	}

	contentPath, err := c.decks.Delete(ctx, documentID)
	if err != nil {
		errs = append(errs, err)
	} else if contentPath != "" {
		if err := c.storage.Delete(ctx, contentPath); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.logger.Info("workspace_cleaned", "document_id", documentID)
	return nil
}

var _ ports.WorkspaceCleaner = (*Cleaner)(nil)
var _ ports.WorkspaceService = (*WorkspaceUsecase)(nil)
