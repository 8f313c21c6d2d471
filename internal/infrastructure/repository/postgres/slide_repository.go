package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
)

type SlideDeckRepository struct {
	db *sql.DB
}

func NewSlideDeckRepository(db *sql.DB) *SlideDeckRepository {
	return &SlideDeckRepository{db: db}
}

// Replace points the document at a new deck file and returns the path the row
// held before, so the caller can remove the orphaned file. The sub-select in
// RETURNING reads the pre-statement snapshot of the row.
func (r *SlideDeckRepository) Replace(ctx context.Context, documentID, contentPath string) (previousPath string, err error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO slide_decks (document_id, content_path, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (document_id) DO UPDATE SET
	content_path = EXCLUDED.content_path,
	updated_at = EXCLUDED.updated_at
RETURNING (SELECT content_path FROM slide_decks WHERE document_id = $1)
`, documentID, contentPath, time.Now().UTC())

	var previous sql.NullString
	if err := row.Scan(&previous); err != nil {
		return "", fmt.Errorf("upsert slide deck: %w", err)
	}
	if previous.Valid && previous.String != contentPath {
		return previous.String, nil
	}
	return "", nil
}

func (r *SlideDeckRepository) GetPath(ctx context.Context, documentID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT content_path FROM slide_decks WHERE document_id = $1
`, documentID)

	var path string
	if err := row.Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.WrapError(domain.ErrNotFound, "get slide deck", fmt.Errorf("slide deck for document %s", documentID))
		}
		return "", fmt.Errorf("scan slide deck: %w", err)
	}
	return path, nil
}

// Delete removes the row and returns the path it pointed at, empty when there
// was nothing to remove.
func (r *SlideDeckRepository) Delete(ctx context.Context, documentID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM slide_decks WHERE document_id = $1 RETURNING content_path
`, documentID)

	var path string
	if err := row.Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("delete slide deck: %w", err)
	}
	return path, nil
}
