package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slidespace/backend/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, name, email, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrInvalidInput, "create user", fmt.Errorf("email %s is already registered", user.Email))
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) getBy(ctx context.Context, where, arg string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, role, created_at
FROM users
`+where, arg)

	var user domain.User
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New("user does not exist"))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// UsageReport aggregates per-user document and export counts for the admin
// xlsx report.
func (r *UserRepository) UsageReport(ctx context.Context, limit int) ([]domain.UsageRow, error) {
	const query = `
SELECT u.name, u.email, COUNT(DISTINCT d.id), COUNT(a.id), MAX(d.created_at)
FROM users u
LEFT JOIN documents d ON d.user_id = u.id
LEFT JOIN pptx_artifacts a ON a.document_id = d.id
GROUP BY u.id, u.name, u.email
ORDER BY u.name
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("usage report: %w", err)
	}
	defer rows.Close()

	var report []domain.UsageRow
	for rows.Next() {
		var entry domain.UsageRow
		var lastUpload sql.NullTime
		if err := rows.Scan(&entry.UserName, &entry.UserEmail, &entry.DocumentCount, &entry.ExportCount, &lastUpload); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		if lastUpload.Valid {
			entry.LastUploadAt = lastUpload.Time
		}
		report = append(report, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}
	return report, nil
}

func isUniqueViolation(err error) bool {
	// pgx surfaces SQLSTATE 23505 in the error text; matching the text keeps
	// database/sql as the only contract here.
	return err != nil && strings.Contains(err.Error(), "23505")
}
