package user

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strconv"

	"github.com/urfu-enjoyers/campuslink/internal/auth"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Service handles identity resolution and profile business logic
type Service struct {
	repo      *Repository
	botToken  string
	publicURL string
}

// NewService creates a new user service. botToken is the secret initData
// payloads are verified against; publicURL prefixes certificate links.
func NewService(repo *Repository, botToken, publicURL string) *Service {
	return &Service{repo: repo, botToken: botToken, publicURL: publicURL}
}

// Authenticate verifies an initData payload and resolves it to a local user
// ID. This is the sole gate establishing the trusted actor for every
// request; it satisfies the auth middleware's Authenticator interface.
func (s *Service) Authenticate(ctx context.Context, initData string) (int64, error) {
	claims, err := auth.Verify(initData, s.botToken)
	if err != nil {
		return 0, err
	}
	u, err := s.Resolve(ctx, claims)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Resolve upserts verified claims into the users table: first verification
// creates the row, later ones refresh the claim-sourced profile fields
// (last-write-wins). Safe to call on every authenticated request.
func (s *Service) Resolve(ctx context.Context, claims *auth.Claims) (*User, error) {
	tgID := strconv.FormatInt(claims.ID, 10)

	firstName := optional(claims.FirstName)
	lastName := optional(claims.LastName)
	username := optional(claims.Username)
	name := optional(claims.DisplayName())

	existing, err := s.repo.GetByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.repo.Create(ctx, tgID, firstName, lastName, username, name)
	}
	return s.repo.RefreshIdentity(ctx, existing.ID, firstName, lastName, username, name)
}

// GetByID retrieves a user by their local ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile applies a partial update to the current user's profile.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest) (*User, error) {
	u, err := s.repo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Me assembles the current user's identity together with their portfolio:
// joined rooms and issued certificates with retrieval URLs.
func (s *Service) Me(ctx context.Context, id int64) (*MeResponse, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rooms, err := s.repo.ListRooms(ctx, id)
	if err != nil {
		return nil, err
	}

	certs, files, err := s.repo.ListCertificates(ctx, id)
	if err != nil {
		return nil, err
	}
	for i, c := range certs {
		c.URL = s.publicURL + path.Join("/certificates", filepath.Base(files[i]))
	}

	if rooms == nil {
		rooms = []*RoomSummary{}
	}
	if certs == nil {
		certs = []*CertificateSummary{}
	}

	return &MeResponse{
		User:      u,
		Portfolio: &Portfolio{Projects: rooms, Certificates: certs},
	}, nil
}

// optional maps an empty string to nil so blank claims stay NULL in storage.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
