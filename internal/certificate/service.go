package certificate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/urfu-enjoyers/campuslink/internal/room"
)

// Common errors
var (
	ErrNotOwner         = errors.New("only the room owner can complete the room")
	ErrAlreadyCompleted = errors.New("room is already completed")
)

// Service coordinates room completion and per-member certificate issuance
type Service struct {
	repo      *Repository
	rooms     *room.Repository
	renderer  Renderer
	publicURL string
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new certificate service with the room repository and
// the artifact renderer injected.
func NewService(repo *Repository, rooms *room.Repository, renderer Renderer, publicURL string, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		rooms:     rooms,
		renderer:  renderer,
		publicURL: publicURL,
		logger:    logger,
		now:       time.Now,
	}
}

// CompleteRoom marks the room completed and issues one certificate per
// current member, owner included. The completion flip is a one-way
// conditional update; re-running completion is rejected as a conflict
// rather than minting duplicates. Issuance itself is a sequential
// at-least-once loop: a renderer failure surfaces to the caller while
// already-issued certificates stay persisted and the room stays completed.
func (s *Service) CompleteRoom(ctx context.Context, roomID, actorID int64) (*CompleteResponse, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, room.ErrRoomNotFound
	}
	if rm.OwnerUserID != actorID {
		return nil, ErrNotOwner
	}

	completed, err := s.rooms.CompleteIfOpen(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrAlreadyCompleted
	}

	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	refs := make([]*Ref, 0, len(members))
	for _, m := range members {
		certNo := s.certificateNumber(roomID, m.UserID, issuedAt)

		name := m.TgID
		if m.Name != nil && *m.Name != "" {
			name = *m.Name
		} else if m.Username != nil && *m.Username != "" {
			name = *m.Username
		}

		filePath, err := s.renderer.Render(ctx, &RenderInput{
			ParticipantName: name,
			RoomTitle:       rm.Title,
			CertificateNo:   certNo,
			IssuedDate:      issuedAt.Format("2006-01-02"),
		})
		if err != nil {
			return nil, fmt.Errorf("render certificate for user %d: %w", m.UserID, err)
		}

		if _, err := s.repo.Insert(ctx, roomID, m.UserID, certNo, filePath); err != nil {
			return nil, err
		}

		s.logger.Info("certificate issued",
			zap.Int64("room_id", roomID),
			zap.Int64("user_id", m.UserID),
			zap.String("certificate_no", certNo))

		refs = append(refs, &Ref{
			UserID:        m.UserID,
			CertificateNo: certNo,
			URL:           s.publicURL + path.Join("/certificates", filepath.Base(filePath)),
		})
	}

	return &CompleteResponse{Certificates: refs}, nil
}

// certificateNumber derives the globally unique number from the room, the
// user and a time-derived suffix: PH-<room>-<user>-<last 6 digits of the
// issuance timestamp in milliseconds>.
func (s *Service) certificateNumber(roomID, userID int64, issuedAt time.Time) string {
	suffix := issuedAt.UnixMilli() % 1_000_000
	return fmt.Sprintf("PH-%04d-%04d-%06d", roomID, userID, suffix)
}
