package room

import (
	"context"
	"database/sql"
	"fmt"
)

const roomColumns = `id, title, description, difficulty, intake_deadline, deadline, requirements, tech_stack, owner_user_id, status, created_at`

// Repository handles room and membership persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new room repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanRoom(row *sql.Row) (*Room, error) {
	rm := &Room{}
	err := row.Scan(
		&rm.ID,
		&rm.Title,
		&rm.Description,
		&rm.Difficulty,
		&rm.IntakeDeadline,
		&rm.Deadline,
		&rm.Requirements,
		&rm.TechStack,
		&rm.OwnerUserID,
		&rm.Status,
		&rm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Create inserts a new room with status open. The caller has already
// normalized the title and difficulty.
func (r *Repository) Create(ctx context.Context, ownerID int64, title string, difficulty int, req *CreateRoomRequest) (*Room, error) {
	query := `
		INSERT INTO rooms (title, description, difficulty, intake_deadline, deadline, requirements, tech_stack, owner_user_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'open')
		RETURNING ` + roomColumns

	rm, err := scanRoom(r.db.QueryRowContext(ctx, query,
		title, req.Description, difficulty, req.IntakeDeadline, req.Deadline, req.Requirements, req.TechStack, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return rm, nil
}

// GetByID retrieves a room by its ID. Returns nil without error when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

	rm, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return rm, nil
}

// ListOpen retrieves open and active rooms, newest first, with the owner's
// display fields joined in.
func (r *Repository) ListOpen(ctx context.Context) ([]*Room, error) {
	query := `
		SELECT r.id, r.title, r.description, r.difficulty, r.intake_deadline, r.deadline,
		       r.requirements, r.tech_stack, r.owner_user_id, r.status, r.created_at,
		       u.name, u.tg_id
		FROM rooms r
		JOIN users u ON u.id = r.owner_user_id
		WHERE r.status IN ('open', 'active')
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open rooms: %w", err)
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		rm := &Room{}
		if err := rows.Scan(
			&rm.ID,
			&rm.Title,
			&rm.Description,
			&rm.Difficulty,
			&rm.IntakeDeadline,
			&rm.Deadline,
			&rm.Requirements,
			&rm.TechStack,
			&rm.OwnerUserID,
			&rm.Status,
			&rm.CreatedAt,
			&rm.OwnerName,
			&rm.OwnerTgID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// AddMember inserts a membership row keyed on (room, user). The insert is
// insert-or-ignore, so repeats never error.
func (r *Repository) AddMember(ctx context.Context, roomID, userID int64, role MemberRole) error {
	query := `INSERT OR IGNORE INTO room_members (room_id, user_id, role) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, roomID, userID, role); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// CompleteIfOpen flips the room to completed as a single conditional
// update. It reports false when the room was already completed, so
// completion can never run twice for the same room.
func (r *Repository) CompleteIfOpen(ctx context.Context, roomID int64) (bool, error) {
	query := `UPDATE rooms SET status = 'completed' WHERE id = ? AND status IN ('open', 'active')`

	res, err := r.db.ExecContext(ctx, query, roomID)
	if err != nil {
		return false, fmt.Errorf("failed to complete room: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// GetMember retrieves one membership row. Returns nil without error when the
// user is not a member.
func (r *Repository) GetMember(ctx context.Context, roomID, userID int64) (*Member, error) {
	query := `
		SELECT rm.room_id, rm.user_id, rm.role, rm.joined_at, u.tg_id, u.name, u.username
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = ? AND rm.user_id = ?
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(
		&m.RoomID, &m.UserID, &m.Role, &m.JoinedAt, &m.TgID, &m.Name, &m.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers retrieves all members of a room, owner first, then by name.
func (r *Repository) ListMembers(ctx context.Context, roomID int64) ([]*Member, error) {
	query := `
		SELECT rm.room_id, rm.user_id, rm.role, rm.joined_at, u.tg_id, u.name, u.username
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = ?
		ORDER BY (rm.role = 'owner') DESC, u.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.RoomID, &m.UserID, &m.Role, &m.JoinedAt, &m.TgID, &m.Name, &m.Username); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPendingRequests retrieves the room's undecided join requests, oldest
// first, with applicant display fields joined in.
func (r *Repository) ListPendingRequests(ctx context.Context, roomID int64) ([]*RequestSummary, error) {
	query := `
		SELECT jr.id, jr.status, jr.created_at, u.tg_id, u.name, u.username
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.room_id = ? AND jr.status = 'pending'
		ORDER BY jr.created_at ASC, jr.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	defer rows.Close()

	var out []*RequestSummary
	for rows.Next() {
		s := &RequestSummary{}
		if err := rows.Scan(&s.ID, &s.Status, &s.CreatedAt, &s.TgID, &s.Name, &s.Username); err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LatestRequestStatus retrieves the status of the user's most recent join
// request in the room, or nil when they never applied.
func (r *Repository) LatestRequestStatus(ctx context.Context, roomID, userID int64) (*string, error) {
	query := `SELECT status FROM join_requests WHERE room_id = ? AND user_id = ? ORDER BY id DESC LIMIT 1`

	var status string
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get own request status: %w", err)
	}
	return &status, nil
}
