package room

// CreateRoomRequest represents the request to create a new room
type CreateRoomRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	Difficulty     *int    `json:"difficulty,omitempty"`
	IntakeDeadline *string `json:"intake_deadline,omitempty"`
	Deadline       *string `json:"deadline,omitempty"`
	Requirements   *string `json:"requirements,omitempty"`
	TechStack      *string `json:"tech_stack,omitempty"`
}

// RequestSummary is a pending join request as shown to the room owner.
type RequestSummary struct {
	ID        int64   `json:"id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	TgID      string  `json:"tg_id"`
	Name      *string `json:"name,omitempty"`
	Username  *string `json:"username,omitempty"`
}

// DetailResponse is the full room view. Requests is only populated for the
// owner; MyRequest is the actor's latest join-request status, if any.
type DetailResponse struct {
	Room      *Room             `json:"room"`
	Members   []*Member         `json:"members"`
	IsOwner   bool              `json:"is_owner"`
	Requests  []*RequestSummary `json:"requests"`
	MyRequest *string           `json:"my_request,omitempty"`
}
