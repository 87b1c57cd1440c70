package user

// UpdateProfileRequest represents the request to update the current user's
// profile. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	GroupNo  *string `json:"group_no,omitempty"`
	GitHub   *string `json:"github,omitempty"`
	GitVerse *string `json:"gitverse,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
}

// RoomSummary is a room the user belongs to, as shown in the portfolio.
type RoomSummary struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Difficulty int     `json:"difficulty"`
	Deadline   *string `json:"deadline,omitempty"`
}

// CertificateSummary is an issued certificate, as shown in the portfolio.
type CertificateSummary struct {
	ID            int64  `json:"id"`
	RoomID        int64  `json:"room_id"`
	RoomTitle     string `json:"room_title"`
	CertificateNo string `json:"certificate_no"`
	IssuedAt      string `json:"issued_at"`
	URL           string `json:"url"`
}

// Portfolio groups the user's rooms and certificates.
type Portfolio struct {
	Projects     []*RoomSummary        `json:"projects"`
	Certificates []*CertificateSummary `json:"certificates"`
}

// MeResponse is the response for the current-identity endpoint.
type MeResponse struct {
	User      *User      `json:"user"`
	Portfolio *Portfolio `json:"portfolio"`
}
