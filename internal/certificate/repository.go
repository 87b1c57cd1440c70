package certificate

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles certificate persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new certificate repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert persists a certificate row. It is only called after the artifact
// file has been produced.
func (r *Repository) Insert(ctx context.Context, roomID, userID int64, certificateNo, filePath string) (*Certificate, error) {
	query := `
		INSERT INTO certificates (room_id, user_id, certificate_no, file_path)
		VALUES (?, ?, ?, ?)
		RETURNING id, room_id, user_id, certificate_no, file_path, issued_at
	`

	c := &Certificate{}
	err := r.db.QueryRowContext(ctx, query, roomID, userID, certificateNo, filePath).Scan(
		&c.ID, &c.RoomID, &c.UserID, &c.CertificateNo, &c.FilePath, &c.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert certificate: %w", err)
	}
	return c, nil
}

// ListByRoom retrieves certificates issued for a room.
func (r *Repository) ListByRoom(ctx context.Context, roomID int64) ([]*Certificate, error) {
	query := `
		SELECT id, room_id, user_id, certificate_no, file_path, issued_at
		FROM certificates
		WHERE room_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var out []*Certificate
	for rows.Next() {
		c := &Certificate{}
		if err := rows.Scan(&c.ID, &c.RoomID, &c.UserID, &c.CertificateNo, &c.FilePath, &c.IssuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
