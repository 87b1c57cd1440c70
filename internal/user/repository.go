package user

import (
	"context"
	"database/sql"
	"fmt"
)

const userColumns = `id, tg_id, first_name, last_name, username, name, bio, group_no, github, gitverse, linkedin, created_at, updated_at`

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.TgID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.Name,
		&u.Bio,
		&u.GroupNo,
		&u.GitHub,
		&u.GitVerse,
		&u.LinkedIn,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByTgID retrieves a user by their external Telegram identity key.
// Returns nil without error when the user does not exist.
func (r *Repository) GetByTgID(ctx context.Context, tgID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tg_id = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, tgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by tg_id: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by their local ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Create inserts a new user row for a freshly verified identity.
func (r *Repository) Create(ctx context.Context, tgID string, firstName, lastName, username, name *string) (*User, error) {
	query := `
		INSERT INTO users (tg_id, first_name, last_name, username, name)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, tgID, firstName, lastName, username, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// RefreshIdentity overwrites the claim-sourced profile fields of an existing
// user (last-write-wins) and bumps updated_at.
func (r *Repository) RefreshIdentity(ctx context.Context, id int64, firstName, lastName, username, name *string) (*User, error) {
	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, username = ?, name = ?, updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, firstName, lastName, username, name, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to refresh user identity: %w", err)
	}
	return u, nil
}

// UpdateProfile applies a partial profile update; nil fields keep their
// current value.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(?, name),
		    bio = COALESCE(?, bio),
		    group_no = COALESCE(?, group_no),
		    github = COALESCE(?, github),
		    gitverse = COALESCE(?, gitverse),
		    linkedin = COALESCE(?, linkedin),
		    updated_at = datetime('now')
		WHERE id = ?
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, req.Name, req.Bio, req.GroupNo, req.GitHub, req.GitVerse, req.LinkedIn, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ListRooms retrieves the rooms a user is a member of, newest first.
func (r *Repository) ListRooms(ctx context.Context, userID int64) ([]*RoomSummary, error) {
	query := `
		SELECT r.id, r.title, r.status, r.difficulty, r.deadline
		FROM room_members rm
		JOIN rooms r ON r.id = rm.room_id
		WHERE rm.user_id = ?
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user rooms: %w", err)
	}
	defer rows.Close()

	var out []*RoomSummary
	for rows.Next() {
		s := &RoomSummary{}
		if err := rows.Scan(&s.ID, &s.Title, &s.Status, &s.Difficulty, &s.Deadline); err != nil {
			return nil, fmt.Errorf("failed to scan room summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListCertificates retrieves the user's issued certificates, newest first.
// The artifact file name is returned; the service turns it into a URL.
func (r *Repository) ListCertificates(ctx context.Context, userID int64) ([]*CertificateSummary, []string, error) {
	query := `
		SELECT c.id, c.room_id, r.title, c.certificate_no, c.issued_at, c.file_path
		FROM certificates c
		JOIN rooms r ON r.id = c.room_id
		WHERE c.user_id = ?
		ORDER BY c.issued_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list user certificates: %w", err)
	}
	defer rows.Close()

	var out []*CertificateSummary
	var paths []string
	for rows.Next() {
		s := &CertificateSummary{}
		var filePath string
		if err := rows.Scan(&s.ID, &s.RoomID, &s.RoomTitle, &s.CertificateNo, &s.IssuedAt, &filePath); err != nil {
			return nil, nil, fmt.Errorf("failed to scan certificate summary: %w", err)
		}
		out = append(out, s)
		paths = append(paths, filePath)
	}
	return out, paths, rows.Err()
}
