package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slidespace/backend/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, user_id, title, stored_filename, mime_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, doc.ID, doc.UserID, doc.Title, doc.StoredFilename, doc.MimeType, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetOwned loads by id and checks ownership itself so a foreign document is
// reported as forbidden, not invisible.
func (r *DocumentRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, stored_filename, mime_type, created_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.StoredFilename, &doc.MimeType, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if doc.UserID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "get document", fmt.Errorf("document %s is not owned by caller", id))
	}
	return &doc, nil
}
