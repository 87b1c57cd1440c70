package room

// Status represents the lifecycle state of a room
type Status string

const (
	StatusOpen      Status = "open"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// MemberRole represents the role of a room member
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Room represents a project room. The owner is fixed at creation; status
// moves one way, open/active -> completed.
type Room struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	Difficulty     int     `json:"difficulty"`
	IntakeDeadline *string `json:"intake_deadline,omitempty"`
	Deadline       *string `json:"deadline,omitempty"`
	Requirements   *string `json:"requirements,omitempty"`
	TechStack      *string `json:"tech_stack,omitempty"`
	OwnerUserID    int64   `json:"owner_user_id"`
	Status         Status  `json:"status"`
	CreatedAt      string  `json:"created_at"`

	// Populated from JOIN in listings
	OwnerName *string `json:"owner_name,omitempty"`
	OwnerTgID *string `json:"owner_tg_id,omitempty"`
}

// Member represents a user's membership in a room
type Member struct {
	RoomID   int64      `json:"room_id"`
	UserID   int64      `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`

	// Populated from JOIN
	TgID     string  `json:"tg_id"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
}
