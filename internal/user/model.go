package user

// User represents a durable local identity backed by a Telegram account.
// Timestamps are SQLite datetime strings ("YYYY-MM-DD HH:MM:SS").
type User struct {
	ID        int64   `json:"id"`
	TgID      string  `json:"tg_id"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Username  *string `json:"username,omitempty"`
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	GroupNo   *string `json:"group_no,omitempty"`
	GitHub    *string `json:"github,omitempty"`
	GitVerse  *string `json:"gitverse,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// DisplayName returns the best human-readable label for the user.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "ID " + u.TgID
}
