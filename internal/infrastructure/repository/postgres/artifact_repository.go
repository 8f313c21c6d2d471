package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slidespace/backend/internal/core/domain"
)

type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) Create(ctx context.Context, artifact *domain.PPTXArtifact) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pptx_artifacts (id, document_id, variant, filename, created_at)
VALUES ($1, $2, $3, $4, $5)
`, artifact.ID, artifact.DocumentID, string(artifact.Variant), artifact.Filename, artifact.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// ListOwned returns the caller's artifacts for one document, newest first.
// An empty variant lists both variants.
func (r *ArtifactRepository) ListOwned(ctx context.Context, documentID, userID string, variant domain.PPTXVariant) ([]domain.PPTXArtifact, error) {
	const query = `
SELECT a.id, a.document_id, a.variant, a.filename, a.created_at
FROM pptx_artifacts a
JOIN documents d ON d.id = a.document_id
WHERE a.document_id = $1 AND d.user_id = $2 AND ($3 = '' OR a.variant = $3)
ORDER BY a.created_at DESC
`
	rows, err := r.db.QueryContext(ctx, query, documentID, userID, string(variant))
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.PPTXArtifact
	for rows.Next() {
		var artifact domain.PPTXArtifact
		var v string
		if err := rows.Scan(&artifact.ID, &artifact.DocumentID, &v, &artifact.Filename, &artifact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.Variant = domain.PPTXVariant(v)
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

// GetOwned loads one artifact and enforces both ownership and, when variant
// is set, variant agreement. A variant mismatch reads as not found so the id
// cannot be probed across variants.
func (r *ArtifactRepository) GetOwned(ctx context.Context, artifactID, userID string, variant domain.PPTXVariant) (*domain.PPTXArtifact, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT a.id, a.document_id, a.variant, a.filename, a.created_at, d.user_id
FROM pptx_artifacts a
JOIN documents d ON d.id = a.document_id
WHERE a.id = $1
`, artifactID)

	var artifact domain.PPTXArtifact
	var v, ownerID string
	err := row.Scan(&artifact.ID, &artifact.DocumentID, &v, &artifact.Filename, &artifact.CreatedAt, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get artifact", fmt.Errorf("artifact %s", artifactID))
		}
		return nil, fmt.Errorf("scan artifact: %w", err)
	}

	if ownerID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "get artifact", fmt.Errorf("artifact %s is not owned by caller", artifactID))
	}
	artifact.Variant = domain.PPTXVariant(v)
	if variant != "" && artifact.Variant != variant {
		return nil, domain.WrapError(domain.ErrNotFound, "get artifact", fmt.Errorf("artifact %s has no %s export", artifactID, variant))
	}
	return &artifact, nil
}
