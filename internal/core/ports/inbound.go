package ports

import (
	"context"
	"io"

	"github.com/slidespace/backend/internal/core/domain"
)

// DocumentService is the inbound contract for upload and document reads.
type DocumentService interface {
	Upload(ctx context.Context, userID, filename string, body io.Reader) (*domain.Document, error)
	Get(ctx context.Context, userID, documentID string) (*domain.Document, *domain.WorkflowState, error)
}

// TitleService drives extraction and the edit/save step.
type TitleService interface {
	Extract(ctx context.Context, userID, documentID string) (*domain.TitleExtraction, error)
	Save(ctx context.Context, userID, documentID string, entries []domain.TitleInput) (*domain.TitleSet, error)
	Get(ctx context.Context, userID, documentID string) (*domain.TitleSet, error)
}

// DeckService generates, reads and saves slide decks.
type DeckService interface {
	Generate(ctx context.Context, userID, documentID string) (*domain.SlideDeck, error)
	Get(ctx context.Context, userID, documentID string) (*domain.SlideDeck, error)
	Save(ctx context.Context, userID, documentID string, slides []domain.Slide) (*domain.SlideDeck, error)
}

// ExportResult carries a generated or re-downloaded PPTX back to the caller.
type ExportResult struct {
	Artifact domain.PPTXArtifact
	Data     []byte
}

// ExportService produces and serves PPTX artifacts.
type ExportService interface {
	Generate(ctx context.Context, userID, documentID string, variant domain.PPTXVariant, slides []domain.Slide) (*ExportResult, error)
	List(ctx context.Context, userID, documentID string, variant domain.PPTXVariant) ([]domain.PPTXArtifact, error)
	Download(ctx context.Context, userID, artifactID string, variant domain.PPTXVariant) (*ExportResult, error)
}

// WorkspaceService resets a document's workflow and schedules cleanup.
type WorkspaceService interface {
	Clear(ctx context.Context, userID, documentID string) error
}

// WorkspaceCleaner is the worker-side contract removing what a Clear left
// behind.
type WorkspaceCleaner interface {
	CleanByDocumentID(ctx context.Context, documentID string) error
}

// AuthService covers account registration and credential checks. Session
// issuance is the HTTP adapter's concern.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// ReportService builds the admin usage report.
type ReportService interface {
	UsageReport(ctx context.Context) ([]domain.UsageRow, error)
}
