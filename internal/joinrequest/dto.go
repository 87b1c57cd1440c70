package joinrequest

// DecideRequest represents the owner's decision on a pending request
type DecideRequest struct {
	Action string `json:"action"`
}

// Applicant is the public profile summary returned on approval so the
// caller can render the new member without a second fetch.
type Applicant struct {
	TgID     string  `json:"tg_id"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
}

// SubmitResponse is the response to a new join request
type SubmitResponse struct {
	RequestID int64 `json:"request_id"`
}

// DecideResponse is the response to a decision. Applicant is only set on
// approval.
type DecideResponse struct {
	Status    RequestStatus `json:"status"`
	Applicant *Applicant    `json:"applicant,omitempty"`
}
