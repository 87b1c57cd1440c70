package room

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Common errors
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrTitleTooShort = errors.New("title must be at least 3 characters")
)

// Service handles room and membership business logic
type Service struct {
	repo *Repository
}

// NewService creates a new room service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the request, inserts the room with status open and seeds
// the owner membership. The membership insert is insert-or-ignore, so a
// retry of the whole call can never produce a duplicate-key error.
func (s *Service) Create(ctx context.Context, ownerID int64, req *CreateRoomRequest) (*Room, error) {
	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) < 3 {
		return nil, ErrTitleTooShort
	}

	difficulty := 1
	if req.Difficulty != nil && *req.Difficulty > 0 {
		difficulty = *req.Difficulty
	}

	rm, err := s.repo.Create(ctx, ownerID, title, difficulty, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, rm.ID, ownerID, MemberRoleOwner); err != nil {
		return nil, err
	}

	return rm, nil
}

// ListOpen retrieves rooms accepting members (open or active), newest first.
func (s *Service) ListOpen(ctx context.Context) ([]*Room, error) {
	rooms, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*Room{}
	}
	return rooms, nil
}

// GetByID retrieves a room by its ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Detail assembles the room view for an actor: the room, the ordered member
// list, the pending request queue (owner only) and the actor's own latest
// request status.
func (s *Service) Detail(ctx context.Context, roomID, actorID int64) (*DetailResponse, error) {
	rm, err := s.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*Member{}
	}

	isOwner := rm.OwnerUserID == actorID

	requests := []*RequestSummary{}
	if isOwner {
		requests, err = s.repo.ListPendingRequests(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if requests == nil {
			requests = []*RequestSummary{}
		}
	}

	myRequest, err := s.repo.LatestRequestStatus(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}

	return &DetailResponse{
		Room:      rm,
		Members:   members,
		IsOwner:   isOwner,
		Requests:  requests,
		MyRequest: myRequest,
	}, nil
}
