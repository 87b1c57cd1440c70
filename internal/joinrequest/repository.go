package joinrequest

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles join-request persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new join-request repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert creates a new pending request and returns its ID.
func (r *Repository) Insert(ctx context.Context, roomID, userID int64) (int64, error) {
	query := `INSERT INTO join_requests (room_id, user_id, status) VALUES (?, ?, 'pending') RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert join request: %w", err)
	}
	return id, nil
}

// HasPending reports whether the user already has an undecided request in
// the room.
func (r *Repository) HasPending(ctx context.Context, roomID, userID int64) (bool, error) {
	query := `SELECT 1 FROM join_requests WHERE room_id = ? AND user_id = ? AND status = 'pending'`

	var one int
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return true, nil
}

// GetByID retrieves a request joined with its room's owner/title and the
// applicant's display fields. Returns nil without error when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Request, error) {
	query := `
		SELECT jr.id, jr.room_id, jr.user_id, jr.status, jr.created_at, jr.updated_at,
		       rm.title, rm.owner_user_id, u.tg_id, u.name, u.username
		FROM join_requests jr
		JOIN rooms rm ON rm.id = jr.room_id
		JOIN users u ON u.id = jr.user_id
		WHERE jr.id = ?
	`

	req := &Request{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.RoomID,
		&req.UserID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.RoomTitle,
		&req.RoomOwnerID,
		&req.ApplicantTgID,
		&req.ApplicantName,
		&req.ApplicantUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return req, nil
}

// TransitionFromPending applies the terminal transition as a single
// conditional update. It reports false when the request was no longer
// pending, which callers treat as the already-processed conflict; two
// racing decisions can therefore never both succeed.
func (r *Repository) TransitionFromPending(ctx context.Context, id int64, status RequestStatus) (bool, error) {
	query := `UPDATE join_requests SET status = ?, updated_at = datetime('now') WHERE id = ? AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to transition join request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}
