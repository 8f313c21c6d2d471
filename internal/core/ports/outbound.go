package ports

import (
	"context"
	"io"

	"github.com/slidespace/backend/internal/core/domain"
)

// DocumentRepository persists uploaded document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	// GetOwned loads a document and enforces ownership in one step; a valid
	// id owned by someone else surfaces as ErrForbidden, never as the row.
	GetOwned(ctx context.Context, id, userID string) (*domain.Document, error)
}

// WorkflowRepository persists the per-document workflow context.
type WorkflowRepository interface {
	Get(ctx context.Context, documentID string) (*domain.WorkflowState, error)
	Save(ctx context.Context, state *domain.WorkflowState) error
}

// TitleRepository stores the saved title set with full-replace semantics.
type TitleRepository interface {
	Replace(ctx context.Context, set *domain.TitleSet) error
	Get(ctx context.Context, documentID string) (*domain.TitleSet, error)
	Delete(ctx context.Context, documentID string) error
}

// SlideDeckRepository stores the pointer to the deck JSON file on disk.
// Replace and Delete return the previous path so the caller can remove the
// stale file.
type SlideDeckRepository interface {
	Replace(ctx context.Context, documentID, contentPath string) (previousPath string, err error)
	GetPath(ctx context.Context, documentID string) (string, error)
	Delete(ctx context.Context, documentID string) (previousPath string, err error)
}

// ArtifactRepository stores exported PPTX rows. Rows accumulate; there is no
// replace operation by design.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *domain.PPTXArtifact) error
	ListOwned(ctx context.Context, documentID, userID string, variant domain.PPTXVariant) ([]domain.PPTXArtifact, error)
	GetOwned(ctx context.Context, id, userID string, variant domain.PPTXVariant) (*domain.PPTXArtifact, error)
}

// UserRepository persists accounts and serves the admin usage report.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UsageReport(ctx context.Context, limit int) ([]domain.UsageRow, error)
}

// ObjectStorage stores originals, deck JSON files and PPTX binaries.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MLGateway is the outbound contract to the remote slide service. Every
// failure mode of a call (transport, status, malformed body) collapses into a
// single error; partial results are never returned.
type MLGateway interface {
	ExtractTitles(ctx context.Context, filename string, file io.Reader) (*domain.TitleExtraction, error)
	GenerateSlides(ctx context.Context, sessionID string, titleIndexes []int) ([]domain.Slide, error)
	GeneratePPTX(ctx context.Context, sessionID string, slides []domain.Slide, variant domain.PPTXVariant) ([]byte, error)
}

// EventQueue publishes/consumes workspace-clear events for the cleanup worker.
type EventQueue interface {
	PublishWorkspaceCleared(ctx context.Context, documentID string) error
	SubscribeWorkspaceCleared(ctx context.Context, handler func(context.Context, string) error) error
}
