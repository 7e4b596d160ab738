package repositories

import (
	"context"

	"github.com/google/uuid"
)

// MembershipRepository manages the user/project join table. A row here is the
// only thing that grants a "user"-role caller access to a project.
type MembershipRepository interface {
	ListProjectIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Replace(ctx context.Context, userID uuid.UUID, projectIDs []uuid.UUID) error
}

type membershipRepo struct {
	db Database
}

func NewMembershipRepo(db Database) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) ListProjectIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT project_id FROM user_projects WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Replace swaps the user's full membership set in one transaction.
func (r *membershipRepo) Replace(ctx context.Context, userID uuid.UUID, projectIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_projects WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, projectID := range projectIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_projects (user_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, projectID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
