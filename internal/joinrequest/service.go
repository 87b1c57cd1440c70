package joinrequest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/internal/user"
)

// Common errors
var (
	ErrRequestNotFound  = errors.New("join request not found")
	ErrRoomClosed       = errors.New("room is not accepting members")
	ErrAlreadyMember    = errors.New("user is already a member of this room")
	ErrAlreadyRequested = errors.New("user already has a pending request for this room")
	ErrAlreadyProcessed = errors.New("join request was already processed")
	ErrNotOwner         = errors.New("only the room owner can decide join requests")
	ErrBadAction        = errors.New("action must be approve or reject")
)

// Notifier delivers the best-effort "new join request" message to the room
// owner. Implementations must not be relied on for correctness: failures
// are logged and swallowed.
type Notifier interface {
	JoinRequest(ctx context.Context, ownerTgID, applicantName, applicantUsername, roomTitle string) error
}

// Service drives the join-request state machine
type Service struct {
	repo     *Repository
	rooms    *room.Repository
	users    *user.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a new join-request service with its collaborating
// repositories injected.
func NewService(repo *Repository, rooms *room.Repository, users *user.Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, rooms: rooms, users: users, notifier: notifier, logger: logger}
}

// Submit files a pending request from candidate to join the room and fires
// the owner notification. The notification is fire-and-forget: its failure
// never fails the submission.
func (s *Service) Submit(ctx context.Context, roomID, candidateID int64) (int64, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if rm == nil {
		return 0, room.ErrRoomNotFound
	}
	if rm.Status != room.StatusOpen && rm.Status != room.StatusActive {
		return 0, ErrRoomClosed
	}

	member, err := s.rooms.GetMember(ctx, roomID, candidateID)
	if err != nil {
		return 0, err
	}
	if member != nil {
		return 0, ErrAlreadyMember
	}

	pending, err := s.repo.HasPending(ctx, roomID, candidateID)
	if err != nil {
		return 0, err
	}
	if pending {
		return 0, ErrAlreadyRequested
	}

	id, err := s.repo.Insert(ctx, roomID, candidateID)
	if err != nil {
		return 0, err
	}

	s.notifyOwner(rm, candidateID)

	return id, nil
}

// notifyOwner sends the new-request message to the room owner in the
// background, detached from the request lifetime.
func (s *Service) notifyOwner(rm *room.Room, candidateID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		owner, err := s.users.GetByID(ctx, rm.OwnerUserID)
		if err != nil || owner == nil {
			s.logger.Warn("join request notification skipped: owner lookup failed",
				zap.Int64("room_id", rm.ID), zap.Error(err))
			return
		}

		applicant, err := s.users.GetByID(ctx, candidateID)
		if err != nil || applicant == nil {
			s.logger.Warn("join request notification skipped: applicant lookup failed",
				zap.Int64("room_id", rm.ID), zap.Error(err))
			return
		}

		username := ""
		if applicant.Username != nil {
			username = *applicant.Username
		}
		if err := s.notifier.JoinRequest(ctx, owner.TgID, applicant.DisplayName(), username, rm.Title); err != nil {
			s.logger.Warn("join request notification failed",
				zap.Int64("room_id", rm.ID),
				zap.String("owner_tg_id", owner.TgID),
				zap.Error(err))
		}
	}()
}

// Decide applies the owner's decision to a pending request. Ownership is
// checked against the authenticated actor's resolved identity. The pending
// check and the status update are one conditional statement, so concurrent
// decisions on the same request cannot both succeed. Approval adds the
// applicant as a member via an idempotent insert.
func (s *Service) Decide(ctx context.Context, roomID, requestID, actorID int64, action string) (*DecideResponse, error) {
	var status RequestStatus
	switch action {
	case ActionApprove:
		status = StatusApproved
	case ActionReject:
		status = StatusRejected
	default:
		return nil, ErrBadAction
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.RoomID != roomID {
		return nil, ErrRequestNotFound
	}
	if req.RoomOwnerID != actorID {
		return nil, ErrNotOwner
	}

	transitioned, err := s.repo.TransitionFromPending(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, ErrAlreadyProcessed
	}

	resp := &DecideResponse{Status: status}
	if status == StatusApproved {
		if err := s.rooms.AddMember(ctx, roomID, req.UserID, room.MemberRoleMember); err != nil {
			return nil, err
		}
		resp.Applicant = &Applicant{
			TgID:     req.ApplicantTgID,
			Name:     req.ApplicantName,
			Username: req.ApplicantUsername,
		}
	}

	return resp, nil
}
