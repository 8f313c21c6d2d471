package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
	"github.com/slidespace/backend/internal/infrastructure/filecheck"
)

const uploadsPrefix = "uploads"

type DocumentUsecase struct {
	documents ports.DocumentRepository
	workflows ports.WorkflowRepository
	storage   ports.ObjectStorage
	logger    *slog.Logger
}

func NewDocumentUsecase(
	documents ports.DocumentRepository,
	workflows ports.WorkflowRepository,
	storage ports.ObjectStorage,
	logger *slog.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		documents: documents,
		workflows: workflows,
		storage:   storage,
		logger:    logger,
	}
}

// Upload validates the file by content, stores the original and opens a fresh
// workflow for it. The declared extension and Content-Type are ignored.
func (u *DocumentUsecase) Upload(ctx context.Context, userID, filename string, body io.Reader) (*domain.Document, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	mime, err := filecheck.Detect(data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	safeName := sanitizeFilename(filename)
	storedFilename := path.Join(uploadsPrefix, fmt.Sprintf("%d_%s", now.Unix(), safeName))

	if err := u.storage.Save(ctx, storedFilename, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &domain.Document{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          titleFromFilename(safeName),
		StoredFilename: storedFilename,
		MimeType:       mime,
		CreatedAt:      now,
	}
	if err := u.documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := u.workflows.Save(ctx, domain.NewWorkflowState(doc.ID, now)); err != nil {
		return nil, err
	}

	u.logger.Info("document_uploaded",
		"document_id", doc.ID,
		"user_id", userID,
		"mime_type", mime,
		"size_bytes", len(data),
	)
	return doc, nil
}

func (u *DocumentUsecase) Get(ctx context.Context, userID, documentID string) (*domain.Document, *domain.WorkflowState, error) {
	doc, err := u.documents.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, nil, err
	}
	state, err := u.workflows.Get(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	return doc, state, nil
}

// sanitizeFilename keeps the base name and replaces anything outside a safe
// character set, so the value is usable as a storage key component.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "document"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document"
	}
	return out
}

func titleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, path.Ext(filename))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled document"
	}
	return name
}
