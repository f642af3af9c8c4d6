package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// eventSelect joins the creator so reads can return the populated username.
const eventSelect = `
	SELECT e.id, e.title, e.description, e.date, e.time, e.location, e.category, e.image,
	       e.created_by, u.username, e.created_at, e.updated_at
	FROM %s e
	JOIN users u ON u.id = e.created_by
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var image sql.NullString
	var username string
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Category, &image,
		&e.CreatedBy, &username, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		e.Image = &image.String
	}
	e.Creator = &domain.EventCreator{ID: e.CreatedBy, Username: username}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, time, location, category, image, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var image sql.NullString
	if e.Image != nil {
		image = sql.NullString{String: *e.Image, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, string(e.Category), image, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(eventSelect, "events") + ` WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// List returns one page of events ordered by date, time, then creation, and
// the total number of rows matching filter.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := buildEventWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM events e` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf(eventSelect, "events") + where + ` ORDER BY e.date ASC, e.time ASC, e.created_at ASC`
	if !params.Unbounded() {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, params.PageSize, params.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func buildEventWhere(filter domain.EventFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		clauses = append(clauses, fmt.Sprintf("e.category = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("e.created_by = $%d", len(args)))
	}
	if filter.IDs != nil {
		args = append(args, pq.Array(filter.IDs))
		clauses = append(clauses, fmt.Sprintf("e.id = ANY($%d::uuid[])", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d OR e.location ILIKE $%d)", n, n, n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Update applies the set fields of update and returns the stored event.
// created_by is never written.
func (r *eventRepository) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Date != nil {
		add("date", *update.Date)
	}
	if update.Time != nil {
		add("time", *update.Time)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Category != nil {
		add("category", string(*update.Category))
	}
	if update.Image != nil {
		// An empty string clears the image.
		var image sql.NullString
		if *update.Image != "" {
			image = sql.NullString{String: *update.Image, Valid: true}
		}
		add("image", image)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		WITH e AS (
			UPDATE events SET %s
			WHERE id = $%d
			RETURNING *
		)`, strings.Join(setClauses, ", "), len(args)) + fmt.Sprintf(eventSelect, "e")
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// Delete removes the event and strips it from every user's saved list in
// the same transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET saved_events = array_remove(saved_events, $1::uuid)
		WHERE $1::uuid = ANY(saved_events)
	`, id); err != nil {
		return err
	}
	return tx.Commit()
}
