package joinrequest

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/urfu-enjoyers/campuslink/internal/database"
	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/internal/user"
)

type captureNotifier struct {
	calls chan string
	fail  bool
}

func (c *captureNotifier) JoinRequest(_ context.Context, _, _, _, roomTitle string) error {
	select {
	case c.calls <- roomTitle:
	default:
	}
	if c.fail {
		return errors.New("telegram unreachable")
	}
	return nil
}

type harness struct {
	svc      *Service
	rooms    *room.Repository
	roomsSvc *room.Service
	notifier *captureNotifier
	db       *sql.DB
}

func setup(t *testing.T) *harness {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "campuslink.sqlite3"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	roomRepo := room.NewRepository(db)
	notifier := &captureNotifier{calls: make(chan string, 8)}
	svc := NewService(NewRepository(db), roomRepo, user.NewRepository(db), notifier, zap.NewNop())

	return &harness{
		svc:      svc,
		rooms:    roomRepo,
		roomsSvc: room.NewService(roomRepo),
		notifier: notifier,
		db:       db,
	}
}

func (h *harness) createUser(t *testing.T, tgID, name string) int64 {
	t.Helper()
	var id int64
	if err := h.db.QueryRow(`INSERT INTO users (tg_id, name) VALUES (?, ?) RETURNING id`, tgID, name).Scan(&id); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func (h *harness) createRoom(t *testing.T, ownerID int64, title string) int64 {
	t.Helper()
	rm, err := h.roomsSvc.Create(context.Background(), ownerID, &room.CreateRoomRequest{Title: title})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return rm.ID
}

func (h *harness) requestStatus(t *testing.T, id int64) string {
	t.Helper()
	var status string
	if err := h.db.QueryRow(`SELECT status FROM join_requests WHERE id = ?`, id).Scan(&status); err != nil {
		t.Fatalf("read request status: %v", err)
	}
	return status
}

func (h *harness) membershipCount(t *testing.T, roomID, userID int64) int {
	t.Helper()
	var n int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM room_members WHERE room_id = ? AND user_id = ?`, roomID, userID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestSubmitCreatesPendingAndNotifiesOwner(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	id, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := h.requestStatus(t, id); got != "pending" {
		t.Errorf("Expected status pending, got %s", got)
	}

	select {
	case title := <-h.notifier.calls:
		if title != "Alpha" {
			t.Errorf("Expected notification for Alpha, got %q", title)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected owner notification")
	}
}

func TestSubmitRoomNotFound(t *testing.T) {
	h := setup(t)
	candidate := h.createUser(t, "101", "Vera")

	_, err := h.svc.Submit(context.Background(), 42, candidate)
	if !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestSubmitToCompletedRoom(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	if _, err := h.rooms.CompleteIfOpen(ctx, roomID); err != nil {
		t.Fatal(err)
	}

	_, err := h.svc.Submit(ctx, roomID, candidate)
	if !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("Expected ErrRoomClosed, got %v", err)
	}
}

func TestSubmitAlreadyMember(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	roomID := h.createRoom(t, owner, "Alpha")

	_, err := h.svc.Submit(ctx, roomID, owner)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("Expected ErrAlreadyMember for the owner, got %v", err)
	}
}

func TestSubmitAlreadyRequested(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	if _, err := h.svc.Submit(ctx, roomID, candidate); err != nil {
		t.Fatal(err)
	}
	_, err := h.svc.Submit(ctx, roomID, candidate)
	if !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("Expected ErrAlreadyRequested, got %v", err)
	}
}

func TestSubmitSurvivesNotifierFailure(t *testing.T) {
	h := setup(t)
	h.notifier.fail = true
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	id, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatalf("Submit must not fail when notification fails, got %v", err)
	}
	if got := h.requestStatus(t, id); got != "pending" {
		t.Errorf("Expected status pending, got %s", got)
	}
}

func TestDecideApproveAddsMember(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := h.svc.Decide(ctx, roomID, reqID, owner, ActionApprove)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if resp.Status != StatusApproved {
		t.Errorf("Expected status approved, got %s", resp.Status)
	}
	if resp.Applicant == nil || resp.Applicant.TgID != "101" {
		t.Errorf("Expected applicant summary with tg_id 101, got %+v", resp.Applicant)
	}
	if n := h.membershipCount(t, roomID, candidate); n != 1 {
		t.Errorf("Expected exactly one membership row, got %d", n)
	}
}

func TestDecideRejectDoesNotAddMember(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := h.svc.Decide(ctx, roomID, reqID, owner, ActionReject)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if resp.Status != StatusRejected {
		t.Errorf("Expected status rejected, got %s", resp.Status)
	}
	if resp.Applicant != nil {
		t.Errorf("Expected no applicant summary on reject, got %+v", resp.Applicant)
	}
	if n := h.membershipCount(t, roomID, candidate); n != 0 {
		t.Errorf("Expected no membership row after reject, got %d", n)
	}
}

func TestDecideIsTerminal(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Decide(ctx, roomID, reqID, owner, ActionApprove); err != nil {
		t.Fatal(err)
	}

	for _, action := range []string{ActionApprove, ActionReject} {
		_, err := h.svc.Decide(ctx, roomID, reqID, owner, action)
		if !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("action %s: expected ErrAlreadyProcessed, got %v", action, err)
		}
	}
	if got := h.requestStatus(t, reqID); got != "approved" {
		t.Errorf("Expected status to stay approved, got %s", got)
	}
}

func TestDecideRequiresOwnership(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	outsider := h.createUser(t, "102", "Walt")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}

	for _, actor := range []int64{candidate, outsider} {
		_, err := h.svc.Decide(ctx, roomID, reqID, actor, ActionApprove)
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("actor %d: expected ErrNotOwner, got %v", actor, err)
		}
	}
	if got := h.requestStatus(t, reqID); got != "pending" {
		t.Errorf("Expected request to stay pending, got %s", got)
	}
}

func TestDecideBadAction(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.svc.Decide(ctx, roomID, reqID, owner, "escalate")
	if !errors.Is(err, ErrBadAction) {
		t.Fatalf("Expected ErrBadAction, got %v", err)
	}
}

func TestDecideRequestMustBelongToRoom(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomA := h.createRoom(t, owner, "Alpha")
	roomB := h.createRoom(t, owner, "Beta")

	reqID, err := h.svc.Submit(ctx, roomA, candidate)
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.svc.Decide(ctx, roomB, reqID, owner, ActionApprove)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("Expected ErrRequestNotFound for room mismatch, got %v", err)
	}
}

func TestConcurrentDecidesHaveOneWinner(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	owner := h.createUser(t, "100", "Uma")
	candidate := h.createUser(t, "101", "Vera")
	roomID := h.createRoom(t, owner, "Alpha")

	reqID, err := h.svc.Submit(ctx, roomID, candidate)
	if err != nil {
		t.Fatal(err)
	}

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Decide(ctx, roomID, reqID, owner, ActionApprove)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyProcessed):
			conflicts++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("Expected exactly one winning decide, got %d", wins)
	}
	if conflicts != racers-1 {
		t.Errorf("Expected %d conflicts, got %d", racers-1, conflicts)
	}
	if n := h.membershipCount(t, roomID, candidate); n != 1 {
		t.Errorf("Expected exactly one membership row, got %d", n)
	}
}
