package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, salt, saved_events, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Salt, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return mapError(err)
	}
	if u.SavedEvents == nil {
		u.SavedEvents = []string{}
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// ToggleSavedEvent flips eventID in the user's saved list inside one
// transaction. The event row is share-locked before the user row is locked
// for update, the order Delete takes them in, so a toggle racing a delete
// either sees no event or commits before the delete strips saved lists.
// Concurrent toggles for one user serialise on the user row lock.
func (r *userRepository) ToggleSavedEvent(ctx context.Context, userID, eventID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck

	var found string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&found)
	if err != nil {
		return false, mapError(err)
	}

	var current pq.StringArray
	err = tx.QueryRowContext(ctx, `SELECT saved_events FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&current)
	if err != nil {
		return false, mapError(err)
	}

	next, saved := domain.ToggleSaved(current, eventID)
	_, err = tx.ExecContext(ctx, `UPDATE users SET saved_events = $2::uuid[], updated_at = NOW() WHERE id = $1`,
		userID, pq.Array(next))
	if err != nil {
		return false, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return saved, nil
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var saved pq.StringArray
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &saved, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	u.SavedEvents = []string(saved)
	if u.SavedEvents == nil {
		u.SavedEvents = []string{}
	}
	return u, nil
}
