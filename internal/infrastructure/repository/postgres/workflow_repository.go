package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slidespace/backend/internal/core/domain"
)

type WorkflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Get(ctx context.Context, documentID string) (*domain.WorkflowState, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_id, stage, ml_session_id, titles_saved, next_title_index, updated_at
FROM workflow_states
WHERE document_id = $1
`, documentID)

	var state domain.WorkflowState
	var stage string
	err := row.Scan(&state.DocumentID, &stage, &state.MLSessionID, &state.TitlesSaved, &state.NextTitleIndex, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get workflow", fmt.Errorf("workflow for document %s", documentID))
		}
		return nil, fmt.Errorf("scan workflow: %w", err)
	}
	state.Stage = domain.Stage(stage)
	return &state, nil
}

// Save upserts the whole row; workflow writes are last-writer-wins by
// explicit contract.
func (r *WorkflowRepository) Save(ctx context.Context, state *domain.WorkflowState) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO workflow_states (document_id, stage, ml_session_id, titles_saved, next_title_index, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (document_id) DO UPDATE SET
	stage = EXCLUDED.stage,
	ml_session_id = EXCLUDED.ml_session_id,
	titles_saved = EXCLUDED.titles_saved,
	next_title_index = EXCLUDED.next_title_index,
	updated_at = EXCLUDED.updated_at
`, state.DocumentID, string(state.Stage), state.MLSessionID, state.TitlesSaved, state.NextTitleIndex, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert workflow: %w", err)
	}
	return nil
}
