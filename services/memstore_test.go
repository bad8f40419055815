package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
)

// memStore is an in-memory stand-in for Postgres. Transactions are serialised
// and rolled back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID       int64
	users        map[int64]models.User
	tournaments  map[int64]models.Tournament
	participants map[int64]models.Participant
	matches      map[int64]models.Match
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[int64]models.User),
		tournaments:  make(map[int64]models.Tournament),
		participants: make(map[int64]models.Participant),
		matches:      make(map[int64]models.Match),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	nextID       int64
	users        map[int64]models.User
	tournaments  map[int64]models.Tournament
	participants map[int64]models.Participant
	matches      map[int64]models.Match
}

func copyMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextID:       s.nextID,
		users:        copyMap(s.users),
		tournaments:  copyMap(s.tournaments),
		participants: copyMap(s.participants),
		matches:      copyMap(s.matches),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.users = snap.users
	s.tournaments = snap.tournaments
	s.participants = snap.participants
	s.matches = snap.matches
}

func (s *memStore) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMatch(m models.Match) *models.Match {
	m.User1ID = cloneInt64(m.User1ID)
	m.User2ID = cloneInt64(m.User2ID)
	m.WinnerID = cloneInt64(m.WinnerID)
	m.NextMatchID = cloneInt64(m.NextMatchID)
	return &m
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.User, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r memUserRepo) UpdateStats(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Rating, u.TournamentsPlayed, u.TournamentsWon = user.Rating, user.TournamentsPlayed, user.TournamentsWon
	r.s.users[user.ID] = u
	return nil
}

type memTournamentRepo struct{ s *memStore }

func (r memTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.OwnerID]; !ok {
		return repositories.ErrTournamentInvalidOwner
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		t := t
		list = append(list, &t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r memTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int64, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) Complete(_ context.Context, _ repositories.SQLExecutor, id int64, winnerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.StatusCompleted
	t.WinnerID = &winnerID
	r.s.tournaments[id] = t
	return nil
}

type memParticipantRepo struct{ s *memStore }

func (r memParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.TournamentID == p.TournamentID && existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	r.s.participants[p.ID] = *p
	return nil
}

func (r memParticipantRepo) FindByUserAndTournament(_ context.Context, _ repositories.SQLExecutor, userID, tournamentID int64) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r memParticipantRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int64) ([]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Participant, 0)
	for _, p := range r.s.participants {
		if p.TournamentID == tournamentID {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type memMatchRepo struct{ s *memStore }

func (r memMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[m.TournamentID]; !ok {
		return repositories.ErrMatchTournamentInvalid
	}
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	r.s.matches[m.ID] = *cloneMatch(*m)
	return nil
}

func (r memMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r memMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int64) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			list = append(list, cloneMatch(m))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.OrderInRound != b.OrderInRound {
			return a.OrderInRound < b.OrderInRound
		}
		return a.ID < b.ID
	})
	return list, nil
}

func (r memMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r memMatchRepo) update(id int64, fn func(m *models.Match)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	fn(&m)
	r.s.matches[id] = *cloneMatch(m)
	return nil
}

func (r memMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id int64, status models.MatchStatus, winnerID *int64) error {
	return r.update(id, func(m *models.Match) {
		m.Status, m.WinnerID = status, cloneInt64(winnerID)
	})
}

func (r memMatchRepo) UpdateSlots(_ context.Context, _ repositories.SQLExecutor, id int64, user1ID, user2ID *int64) error {
	return r.update(id, func(m *models.Match) {
		m.User1ID, m.User2ID = cloneInt64(user1ID), cloneInt64(user2ID)
	})
}

func (r memMatchRepo) UpdateNextMatch(_ context.Context, _ repositories.SQLExecutor, id int64, nextMatchID *int64) error {
	return r.update(id, func(m *models.Match) {
		m.NextMatchID = cloneInt64(nextMatchID)
	})
}

// fakeUploader records archived documents, or fails when err is set.
type fakeUploader struct {
	mu   sync.Mutex
	err  error
	keys []string
	body map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.body == nil {
		u.body = make(map[string][]byte)
	}
	u.keys = append(u.keys, key)
	u.body[key] = data
	return &storage.UploadResult{Key: key}, nil
}

func (u *fakeUploader) GetPublicURL(string) string { return "" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
