package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-secret"

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	if in.Password == "" {
		return nil, services.ErrCredentialsRequired
	}
	return &models.User{ID: 1, Nickname: in.Nickname, Email: in.Email, Rating: models.DefaultRating}, nil
}

func (stubAuth) Login(_ context.Context, in services.LoginInput) (*models.User, error) {
	if in.Password != "correct-horse" {
		return nil, services.ErrInvalidCredentials
	}
	return &models.User{ID: 7, Nickname: "neo", Email: in.Email}, nil
}

type stubUsers struct{}

func (stubUsers) GetProfile(_ context.Context, id int64) (*models.User, error) {
	if id != 7 {
		return nil, services.ErrUserNotFound
	}
	return &models.User{ID: 7, Nickname: "neo", Rating: 1049}, nil
}

type stubTournaments struct {
	lastFilter repositories.ListTournamentsFilter
	lastActor  int64
}

func (s *stubTournaments) CreateTournament(_ context.Context, ownerID int64, in services.CreateTournamentInput) (*models.Tournament, error) {
	s.lastActor = ownerID
	return &models.Tournament{ID: 3, Name: in.Name, Format: in.Format, OwnerID: ownerID, Status: models.StatusNotStarted}, nil
}

func (s *stubTournaments) GetTournament(context.Context, int64) (*models.Tournament, error) {
	return nil, services.ErrTournamentNotFound
}

func (s *stubTournaments) ListTournaments(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	s.lastFilter = filter
	return []*models.Tournament{}, nil
}

func (s *stubTournaments) GetFullTournamentData(_ context.Context, id int64) (*services.TournamentDetails, error) {
	if id != 3 {
		return nil, services.ErrTournamentNotFound
	}
	return &services.TournamentDetails{Tournament: &models.Tournament{ID: 3}}, nil
}

func (s *stubTournaments) StartTournament(_ context.Context, actorID, _ int64) (*services.StartResult, error) {
	s.lastActor = actorID
	if actorID != 7 {
		return nil, services.ErrNotTournamentOwner
	}
	return &services.StartResult{Tournament: &models.Tournament{ID: 3, Status: models.StatusInProgress}}, nil
}

func (s *stubTournaments) CompleteTournament(context.Context, int64, int64) (*services.CompletionResult, error) {
	return nil, services.ErrNoWinnerDetermined
}

type stubBrackets struct{}

func (stubBrackets) GenerateMatches(_ context.Context, _, id int64) (*services.GenerationResult, error) {
	return &services.GenerationResult{TournamentID: id, Round: 1, Count: 0, Matches: []*models.Match{}}, nil
}

func (stubBrackets) GenerateNextRound(context.Context, int64, int64) (*services.GenerationResult, error) {
	return nil, services.ErrRoundIncomplete
}

type stubParticipants struct{}

func (stubParticipants) JoinTournament(_ context.Context, tournamentID, userID int64, deckID *int64) (*models.Participant, error) {
	return &models.Participant{ID: 1, TournamentID: tournamentID, UserID: userID, DeckID: deckID, InitialRating: 1000}, nil
}

func (stubParticipants) ListParticipants(context.Context, int64) ([]*models.Participant, error) {
	return []*models.Participant{}, nil
}

type stubMatches struct {
	lastWinner int64
}

func (s *stubMatches) ListMatches(context.Context, int64) ([]*models.Match, error) {
	return []*models.Match{}, nil
}

func (s *stubMatches) AssignWinner(_ context.Context, _, matchID, winnerID int64) (*services.AssignWinnerResult, error) {
	s.lastWinner = winnerID
	if winnerID == 99 {
		return nil, services.ErrWinnerNotInMatch
	}
	return &services.AssignWinnerResult{Match: &models.Match{ID: matchID, WinnerID: &winnerID}}, nil
}

type testServer struct {
	router      chi.Router
	tournaments *stubTournaments
	matches     *stubMatches
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		router:      chi.NewRouter(),
		tournaments: &stubTournaments{},
		matches:     &stubMatches{},
	}
	SetupRoutes(ts.router, testSecret, []string{"*"},
		handlers.NewAuthHandler(stubAuth{}, testSecret),
		handlers.NewUserHandler(stubUsers{}),
		handlers.NewTournamentHandler(ts.tournaments, stubBrackets{}),
		handlers.NewParticipantHandler(stubParticipants{}),
		handlers.NewMatchHandler(ts.matches),
	)
	return ts
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (ts *testServer) do(t *testing.T, method, path, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)
	owner := bearer(t, 7)
	stranger := bearer(t, 8)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		status int
	}{
		{"register", http.MethodPost, "/auth/register", `{"nickname":"neo","email":"neo@example.com","password":"correct-horse"}`, "", http.StatusCreated},
		{"register missing password", http.MethodPost, "/auth/register", `{"nickname":"neo","email":"neo@example.com"}`, "", http.StatusBadRequest},
		{"register unknown field", http.MethodPost, "/auth/register", `{"role":"admin"}`, "", http.StatusBadRequest},
		{"login bad password", http.MethodPost, "/auth/login", `{"email":"neo@example.com","password":"nope"}`, "", http.StatusUnauthorized},
		{"me without token", http.MethodGet, "/users/me", "", "", http.StatusUnauthorized},
		{"me", http.MethodGet, "/users/me", "", owner, http.StatusOK},
		{"user not found", http.MethodGet, "/users/5", "", "", http.StatusNotFound},
		{"list", http.MethodGet, "/tournaments", "", "", http.StatusOK},
		{"list bad limit", http.MethodGet, "/tournaments?limit=0", "", "", http.StatusBadRequest},
		{"list bad owner", http.MethodGet, "/tournaments?owner_id=x", "", "", http.StatusBadRequest},
		{"details", http.MethodGet, "/tournaments/3", "", "", http.StatusOK},
		{"details not found", http.MethodGet, "/tournaments/4", "", "", http.StatusNotFound},
		{"details bad id", http.MethodGet, "/tournaments/abc", "", "", http.StatusBadRequest},
		{"create requires auth", http.MethodPost, "/tournaments", `{"name":"Cup","format":"RoundRobin"}`, "", http.StatusUnauthorized},
		{"create", http.MethodPost, "/tournaments", `{"name":"Cup","format":"RoundRobin"}`, owner, http.StatusCreated},
		{"join without body", http.MethodPost, "/tournaments/3/join", "", stranger, http.StatusCreated},
		{"join with deck", http.MethodPost, "/tournaments/3/join", `{"deck_id":12}`, stranger, http.StatusCreated},
		{"participants", http.MethodGet, "/tournaments/3/participants", "", "", http.StatusOK},
		{"start by owner", http.MethodPost, "/tournaments/3/start", "", owner, http.StatusOK},
		{"start by stranger", http.MethodPost, "/tournaments/3/start", "", stranger, http.StatusForbidden},
		{"generate", http.MethodPost, "/tournaments/3/matches/generate", "", owner, http.StatusCreated},
		{"next round incomplete", http.MethodPost, "/tournaments/3/rounds/next", "", owner, http.StatusConflict},
		{"complete without winner", http.MethodPost, "/tournaments/3/complete", "", owner, http.StatusConflict},
		{"matches", http.MethodGet, "/tournaments/3/matches", "", "", http.StatusOK},
		{"winner", http.MethodPost, "/matches/10/winner", `{"winner_id":5}`, owner, http.StatusOK},
		{"winner missing id", http.MethodPost, "/matches/10/winner", `{}`, owner, http.StatusBadRequest},
		{"winner not in match", http.MethodPost, "/matches/10/winner", `{"winner_id":99}`, owner, http.StatusBadRequest},
		{"winner requires auth", http.MethodPost, "/matches/10/winner", `{"winner_id":5}`, "", http.StatusUnauthorized},
		{"health", http.MethodGet, "/healthz", "", "", http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.do(t, tc.method, tc.path, tc.body, tc.auth)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/auth/login", `{"email":"neo@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	rr = ts.do(t, http.MethodGet, "/users/me", "", "Bearer "+body.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rating": 1049`)
}

func TestListParsesFilters(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/tournaments?owner_id=7&status=in_progress&format=SwissStage&limit=5&offset=10", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	f := ts.tournaments.lastFilter
	require.NotNil(t, f.OwnerID)
	assert.Equal(t, int64(7), *f.OwnerID)
	assert.Equal(t, models.StatusInProgress, *f.Status)
	assert.Equal(t, models.FormatSwissStage, *f.Format)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 10, f.Offset)

	ts.do(t, http.MethodGet, "/tournaments", "", "")
	assert.Equal(t, 20, ts.tournaments.lastFilter.Limit)
}

func TestCreatePassesCaller(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/tournaments", `{"name":"Cup","format":"SwissStage","round_count":3}`, bearer(t, 42))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, int64(42), ts.tournaments.lastActor)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/tournaments", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
