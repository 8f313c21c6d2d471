package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/slidespace/backend/internal/core/domain"
)

// TitleRepository stores the per-document title set as one jsonb row, so a
// save always replaces the previous set atomically.
type TitleRepository struct {
	db *sql.DB
}

func NewTitleRepository(db *sql.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) Replace(ctx context.Context, set *domain.TitleSet) error {
	payload, err := json.Marshal(set.Entries)
	if err != nil {
		return fmt.Errorf("marshal titles: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO document_titles (document_id, titles, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (document_id) DO UPDATE SET
	titles = EXCLUDED.titles,
	updated_at = EXCLUDED.updated_at
`, set.DocumentID, payload, set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert titles: %w", err)
	}
	return nil
}

func (r *TitleRepository) Get(ctx context.Context, documentID string) (*domain.TitleSet, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT titles, updated_at FROM document_titles WHERE document_id = $1
`, documentID)

	var payload []byte
	var updatedAt time.Time
	if err := row.Scan(&payload, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get titles", fmt.Errorf("titles for document %s", documentID))
		}
		return nil, fmt.Errorf("scan titles: %w", err)
	}

	set := domain.TitleSet{DocumentID: documentID, UpdatedAt: updatedAt}
	if err := json.Unmarshal(payload, &set.Entries); err != nil {
		return nil, fmt.Errorf("unmarshal titles: %w", err)
	}
	return &set, nil
}

func (r *TitleRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_titles WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete titles: %w", err)
	}
	return nil
}
