package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/urfu-enjoyers/campuslink/internal/auth"
	"github.com/urfu-enjoyers/campuslink/internal/certificate"
	"github.com/urfu-enjoyers/campuslink/internal/database"
	"github.com/urfu-enjoyers/campuslink/internal/joinrequest"
	"github.com/urfu-enjoyers/campuslink/internal/notify"
	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/internal/user"
	mw "github.com/urfu-enjoyers/campuslink/pkg/middleware"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

const testBotToken = "123456:TEST-TOKEN"

type testApp struct {
	router chi.Router
	db     *sql.DB
}

// newTestApp wires the features the same way main does, over a temp
// database and a temp certificate directory.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "campuslink.sqlite3"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	certDir := t.TempDir()
	renderer, err := certificate.NewPDFRenderer(certDir)
	if err != nil {
		t.Fatalf("prepare renderer: %v", err)
	}

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, testBotToken, "https://campuslink.example")
	userHandler := user.NewHandler(userService)

	roomRepo := room.NewRepository(db)
	roomHandler := room.NewHandler(room.NewService(roomRepo))

	joinService := joinrequest.NewService(joinrequest.NewRepository(db), roomRepo, userRepo, notify.Noop{}, logger)
	joinHandler := joinrequest.NewHandler(joinService)

	certService := certificate.NewService(certificate.NewRepository(db), roomRepo, renderer, "https://campuslink.example", logger)
	certHandler := certificate.NewHandler(certService, certDir)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.TelegramAuth(userService))

		r.Mount("/me", userHandler.Routes())

		rooms := roomHandler.Routes()
		rooms.Post("/{id}/join", joinHandler.Submit)
		rooms.Post("/{id}/requests/{requestID}", joinHandler.Decide)
		rooms.Post("/{id}/complete", certHandler.Complete)
		r.Mount("/rooms", rooms)
	})
	r.Mount("/certificates", certHandler.ArtifactRoutes())

	return &testApp{router: r, db: db}
}

// signInitData produces a Web-App-signed payload for the given Telegram
// identity, the same shape the Mini App client sends.
func signInitData(tgID int64, firstName, username string) string {
	params := map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAE-test-query",
		"user":      fmt.Sprintf(`{"id":%d,"first_name":%q,"username":%q}`, tgID, firstName, username),
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+params[k])
	}
	hash := (&auth.WebAppScheme{}).Sign(strings.Join(lines, "\n"), testBotToken)

	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	v.Set("hash", hash)
	return v.Encode()
}

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *response.APIError `json:"error"`
}

func (a *testApp) do(t *testing.T, method, target, initData, body string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if initData != "" {
		req.Header.Set(mw.InitDataHeader, initData)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, &env
}

func (a *testApp) createRoom(t *testing.T, initData, title string) int64 {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/api/rooms", initData, fmt.Sprintf(`{"title":%q}`, title))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var rm room.Room
	if err := json.Unmarshal(env.Data, &rm); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	return rm.ID
}

func TestAPIAuthGate(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodGet, "/api/rooms", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without initData, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeAuthMissing {
		t.Errorf("Expected AUTH_MISSING, got %+v", env.Error)
	}

	tampered := strings.Replace(signInitData(100, "Uma", "uma"), "Uma", "Eve", 1)
	rec, env = app.do(t, http.MethodGet, "/api/rooms", tampered, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for tampered initData, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeAuthInvalid {
		t.Errorf("Expected AUTH_INVALID, got %+v", env.Error)
	}
}

func TestJoinApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	owner := signInitData(100, "Uma", "uma")
	candidate := signInitData(101, "Vera", "vera")

	roomID := app.createRoom(t, owner, "Alpha")

	// Candidate files a request.
	rec, env := app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", roomID), candidate, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var submitted joinrequest.SubmitResponse
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatal(err)
	}

	// The candidate sees their pending status, not the queue.
	rec, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", roomID), candidate, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", rec.Code)
	}
	var detail room.DetailResponse
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if detail.IsOwner {
		t.Error("Candidate must not be flagged as owner")
	}
	if detail.MyRequest == nil || *detail.MyRequest != "pending" {
		t.Errorf("Expected my_request pending, got %v", detail.MyRequest)
	}
	if len(detail.Requests) != 0 {
		t.Errorf("Candidate must not see the request queue, got %d entries", len(detail.Requests))
	}

	// The owner sees the queue and approves.
	rec, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", roomID), owner, "")
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if !detail.IsOwner || len(detail.Requests) != 1 {
		t.Fatalf("Expected owner to see 1 pending request, got %d (is_owner=%v)", len(detail.Requests), detail.IsOwner)
	}

	decideURL := fmt.Sprintf("/api/rooms/%d/requests/%d", roomID, submitted.RequestID)
	rec, env = app.do(t, http.MethodPost, decideURL, owner, `{"action":"approve"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("decide: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var decided joinrequest.DecideResponse
	if err := json.Unmarshal(env.Data, &decided); err != nil {
		t.Fatal(err)
	}
	if decided.Status != joinrequest.StatusApproved {
		t.Errorf("Expected approved, got %s", decided.Status)
	}
	if decided.Applicant == nil || decided.Applicant.TgID != "101" {
		t.Errorf("Expected applicant tg_id 101, got %+v", decided.Applicant)
	}

	// The candidate is now a member.
	_, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", roomID), candidate, "")
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if len(detail.Members) != 2 {
		t.Errorf("Expected 2 members after approval, got %d", len(detail.Members))
	}

	// A second decision on the same request conflicts.
	rec, env = app.do(t, http.MethodPost, decideURL, owner, `{"action":"reject"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on re-decide, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeConflict {
		t.Errorf("Expected CONFLICT, got %+v", env.Error)
	}
}

func TestDecideByNonOwnerForbidden(t *testing.T) {
	app := newTestApp(t)
	owner := signInitData(100, "Uma", "uma")
	candidate := signInitData(101, "Vera", "vera")

	roomID := app.createRoom(t, owner, "Alpha")
	rec, env := app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", roomID), candidate, "")
	if rec.Code != http.StatusCreated {
		t.Fatal(rec.Code)
	}
	var submitted joinrequest.SubmitResponse
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatal(err)
	}

	rec, env = app.do(t, http.MethodPost,
		fmt.Sprintf("/api/rooms/%d/requests/%d", roomID, submitted.RequestID),
		candidate, `{"action":"approve"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeForbidden {
		t.Errorf("Expected FORBIDDEN, got %+v", env.Error)
	}
}

func TestCompletionFlow(t *testing.T) {
	app := newTestApp(t)
	owner := signInitData(100, "Uma", "uma")
	candidate := signInitData(101, "Vera", "vera")

	roomID := app.createRoom(t, owner, "Alpha")

	// Approve one member so completion issues two certificates.
	_, env := app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", roomID), candidate, "")
	var submitted joinrequest.SubmitResponse
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatal(err)
	}
	rec, _ := app.do(t, http.MethodPost,
		fmt.Sprintf("/api/rooms/%d/requests/%d", roomID, submitted.RequestID), owner, `{"action":"approve"}`)
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}

	rec, env = app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/complete", roomID), owner, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var completed certificate.CompleteResponse
	if err := json.Unmarshal(env.Data, &completed); err != nil {
		t.Fatal(err)
	}
	if len(completed.Certificates) != 2 {
		t.Fatalf("Expected 2 certificates, got %d", len(completed.Certificates))
	}

	// The completed room leaves the open listing.
	_, env = app.do(t, http.MethodGet, "/api/rooms", owner, "")
	var open []*room.Room
	if err := json.Unmarshal(env.Data, &open); err != nil {
		t.Fatal(err)
	}
	for _, r := range open {
		if r.ID == roomID {
			t.Error("Completed room must not be listed")
		}
	}

	// Artifacts are public by URL, no initData required.
	ref := completed.Certificates[0]
	artifact := "/certificates/" + certificate.ArtifactFileName(ref.CertificateNo)
	req := httptest.NewRequest(http.MethodGet, artifact, nil)
	recArtifact := httptest.NewRecorder()
	app.router.ServeHTTP(recArtifact, req)
	if recArtifact.Code != http.StatusOK {
		t.Fatalf("Expected public artifact fetch to return 200, got %d", recArtifact.Code)
	}
	if ct := recArtifact.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}

	// Completing again conflicts and mints nothing new.
	rec, env = app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/complete", roomID), owner, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on re-complete, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeConflict {
		t.Errorf("Expected CONFLICT, got %+v", env.Error)
	}
}

func TestJoinCompletedRoomConflicts(t *testing.T) {
	app := newTestApp(t)
	owner := signInitData(100, "Uma", "uma")
	candidate := signInitData(101, "Vera", "vera")

	roomID := app.createRoom(t, owner, "Alpha")
	rec, _ := app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/complete", roomID), owner, "")
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}

	rec, env := app.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", roomID), candidate, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 joining a completed room, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.CodeConflict {
		t.Errorf("Expected CONFLICT, got %+v", env.Error)
	}
}

func TestMeProfileRoundTrip(t *testing.T) {
	app := newTestApp(t)
	initData := signInitData(100, "Uma", "uma")

	rec, env := app.do(t, http.MethodPut, "/api/me", initData, `{"bio":"systems student"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = app.do(t, http.MethodGet, "/api/me", initData, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me user.MeResponse
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatal(err)
	}
	if me.User == nil || me.User.TgID != "100" {
		t.Fatalf("Expected resolved user with tg_id 100, got %+v", me.User)
	}
	if me.User.Bio == nil || *me.User.Bio != "systems student" {
		t.Errorf("Expected bio to persist, got %v", me.User.Bio)
	}
}
