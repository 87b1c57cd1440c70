package joinrequest

// RequestStatus represents the state of a join request. Transitions are
// one-way out of pending; approved and rejected are terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Actions a room owner may take on a pending request.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Request represents a join request joined with the fields needed to decide
// it: the room's owner and title, and the applicant's display fields.
type Request struct {
	ID        int64         `json:"id"`
	RoomID    int64         `json:"room_id"`
	UserID    int64         `json:"user_id"`
	Status    RequestStatus `json:"status"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`

	// Populated from JOIN
	RoomTitle         string  `json:"-"`
	RoomOwnerID       int64   `json:"-"`
	ApplicantTgID     string  `json:"-"`
	ApplicantName     *string `json:"-"`
	ApplicantUsername *string `json:"-"`
}
