package certificate

// Certificate represents an issued completion artifact
type Certificate struct {
	ID            int64  `json:"id"`
	RoomID        int64  `json:"room_id"`
	UserID        int64  `json:"user_id"`
	CertificateNo string `json:"certificate_no"`
	FilePath      string `json:"file_path"`
	IssuedAt      string `json:"issued_at"`
}

// Ref is the reference returned to the caller after issuance
type Ref struct {
	UserID        int64  `json:"user_id"`
	CertificateNo string `json:"certificate_no"`
	URL           string `json:"url"`
}

// CompleteResponse wraps the refs issued by a room completion
type CompleteResponse struct {
	Certificates []*Ref `json:"certificates"`
}
